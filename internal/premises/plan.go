package premises

import (
	"sort"

	"github.com/ppiankov/protectwatch/internal/model"
)

// GenerateActionPlan emits one action per not_met requirement, sorted by
// priority severity. Input order is kept within a priority.
func (p *Planner) GenerateActionPlan(reqs []Requirement, risk RiskLevel) []Action {
	now := p.now()
	actions := []Action{}
	var assessmentIDs []string

	for _, r := range reqs {
		if r.Status != StatusNotMet {
			continue
		}

		priority, days := p.schedule(r, risk)
		a := Action{
			ID:            "ACT-" + r.ID,
			RequirementID: r.ID,
			Action:        r.Text,
			Priority:      priority,
			Deadline:      now.AddDate(0, 0, days),
			Responsible:   r.Responsible,
			EstimatedCost: p.cat.EstimateCost(r.Text),
			Status:        ActionPending,
		}
		if r.Category == "risk_assessment" {
			assessmentIDs = append(assessmentIDs, a.ID)
		}
		actions = append(actions, a)
	}

	// A security plan is written from the risk assessment.
	if len(assessmentIDs) > 0 {
		for i := range actions {
			if categoryOf(reqs, actions[i].RequirementID) == "security_plan" {
				actions[i].Dependencies = append([]string{}, assessmentIDs...)
			}
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return model.PriorityRank[actions[i].Priority] < model.PriorityRank[actions[j].Priority]
	})
	return actions
}

// schedule applies the priority cascade and returns priority and deadline offset in days.
func (p *Planner) schedule(r Requirement, risk RiskLevel) (model.Priority, int) {
	d := p.cat.Deadlines
	switch {
	case r.Category == "risk_assessment" || r.Category == "security_plan":
		return model.PriorityCritical, d.CriticalDays
	case risk.Escalated():
		if rank, ok := model.PriorityRank[r.Priority]; ok && rank < model.PriorityRank[model.PriorityHigh] {
			return r.Priority, d.EscalatedDays
		}
		return model.PriorityHigh, d.EscalatedDays
	default:
		if _, ok := model.PriorityRank[r.Priority]; !ok {
			return model.PriorityMedium, d.DefaultDays
		}
		return r.Priority, d.DefaultDays
	}
}

func categoryOf(reqs []Requirement, id string) string {
	for _, r := range reqs {
		if r.ID == id {
			return r.Category
		}
	}
	return ""
}
