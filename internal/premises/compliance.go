package premises

import (
	"fmt"
	"math"

	"github.com/ppiankov/protectwatch/internal/model"
)

// CheckCompliance measures an assessment against its own tracked requirements.
// Every tracked requirement counts toward the total; only met ones count as met.
// not_applicable items are never critical gaps. IsCompliant needs all tracked
// requirements met and no critical gaps; with nothing tracked the venue is 0%
// and not compliant.
func (p *Planner) CheckCompliance(a ComplianceAssessment) ComplianceStatus {
	now := p.now()
	st := ComplianceStatus{
		CriticalGaps: []string{},
		NextActions:  []Action{},
		Deadlines:    []DeadlineStatus{},
	}

	for _, r := range a.Requirements {
		st.Tracked++
		switch r.Status {
		case StatusMet:
			st.Met++
			continue
		case StatusNotApplicable:
			continue
		}
		if r.Priority == model.PriorityCritical || r.Priority == model.PriorityHigh {
			st.CriticalGaps = append(st.CriticalGaps, fmt.Sprintf("%s: %s", r.ID, r.Text))
		}
	}
	if st.Tracked > 0 {
		st.CompliancePercentage = float64(st.Met) * 100 / float64(st.Tracked)
	}
	st.IsCompliant = st.Tracked > 0 && st.Met == st.Tracked && len(st.CriticalGaps) == 0

	for _, act := range a.ActionPlan {
		if act.Status != ActionCompleted && len(st.NextActions) < p.cat.NextActionsLimit {
			st.NextActions = append(st.NextActions, act)
		}
		st.Deadlines = append(st.Deadlines, DeadlineStatus{
			ActionID:      act.ID,
			Action:        act.Action,
			Deadline:      act.Deadline,
			DaysRemaining: int(math.Ceil(act.Deadline.Sub(now).Hours() / 24)),
			Overdue:       now.After(act.Deadline) && act.Status != ActionCompleted,
		})
	}
	return st
}
