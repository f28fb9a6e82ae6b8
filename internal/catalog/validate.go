package catalog

import (
	"fmt"
	"strings"

	"github.com/ppiankov/protectwatch/internal/model"
)

// Validate checks struct tags and the cross-table invariants the engines rely on.
func (c *Catalog) Validate() error {
	if err := model.Validate(c); err != nil {
		return err
	}

	var problems []string
	problems = append(problems, c.Risk.check()...)
	problems = append(problems, c.Credentials.check()...)
	problems = append(problems, c.Premises.check()...)

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (r RiskCatalog) check() []string {
	var problems []string

	// Bands: listed lowest first, contiguous over 1..25, tiers never step down.
	next := 1
	prevTier := -1
	for _, b := range r.Bands {
		if b.Min != next {
			problems = append(problems, fmt.Sprintf("risk band %s starts at %d, want %d", b.Name, b.Min, next))
		}
		if b.Max < b.Min {
			problems = append(problems, fmt.Sprintf("risk band %s has max %d below min %d", b.Name, b.Max, b.Min))
		}
		rank, ok := model.TierRank[b.RecommendedTier]
		if !ok {
			problems = append(problems, fmt.Sprintf("risk band %s has unknown tier %q", b.Name, b.RecommendedTier))
		} else if rank < prevTier {
			problems = append(problems, fmt.Sprintf("risk band %s recommends a lower tier than the band below it", b.Name))
		} else {
			prevTier = rank
		}
		next = b.Max + 1
	}
	if next != 26 {
		problems = append(problems, fmt.Sprintf("risk bands end at %d, want 25", next-1))
	}

	ids := make(map[string]bool, len(r.Factors))
	for _, f := range r.Factors {
		if ids[f.ID] {
			problems = append(problems, fmt.Sprintf("duplicate risk factor %q", f.ID))
		}
		ids[f.ID] = true
	}

	questions := make(map[string]bool, len(r.Questions))
	for _, q := range r.Questions {
		if questions[q.ID] {
			problems = append(problems, fmt.Sprintf("duplicate question %q", q.ID))
		}
		questions[q.ID] = true
		for _, a := range q.Answers {
			for _, id := range a.Activates {
				if !ids[id] {
					problems = append(problems, fmt.Sprintf("question %s answer %s activates unknown factor %q", q.ID, a.Value, id))
				}
			}
		}
	}
	return problems
}

func (c CredentialCatalog) check() []string {
	var problems []string

	codes := make(map[string]bool, len(c.Categories))
	for _, spec := range c.Categories {
		if _, err := model.ParseLicenseCategory(string(spec.Category)); err != nil {
			problems = append(problems, err.Error())
		}
		code := strings.ToUpper(spec.Code)
		if codes[code] {
			problems = append(problems, fmt.Sprintf("duplicate licence code %q", code))
		}
		codes[code] = true
	}

	for tier := range model.TierRank {
		req, ok := c.RequirementFor(tier)
		if !ok {
			problems = append(problems, fmt.Sprintf("no service requirements for tier %s", tier))
		} else if req.RequiredDBSLevel != "" {
			if _, ok := c.DBSFor(req.RequiredDBSLevel); !ok {
				problems = append(problems, fmt.Sprintf("tier %s requires unknown DBS level %q", tier, req.RequiredDBSLevel))
			}
		}
		if _, ok := c.InsuranceFor(tier); !ok {
			problems = append(problems, fmt.Sprintf("no insurance minimums for tier %s", tier))
		}
	}

	for tier := range model.ExperienceRank {
		if _, ok := c.ExperienceFor(tier); !ok {
			problems = append(problems, fmt.Sprintf("no experience entry for %s", tier))
		}
	}
	for _, d := range c.DBS {
		if _, ok := model.DBSRank[d.Level]; !ok {
			problems = append(problems, fmt.Sprintf("unknown DBS level %q", d.Level))
		}
	}
	return problems
}

func (p PremisesCatalog) check() []string {
	var problems []string

	if p.StandardThreshold >= p.EnhancedThreshold {
		problems = append(problems, fmt.Sprintf("standard threshold %d must be below enhanced threshold %d",
			p.StandardThreshold, p.EnhancedThreshold))
	}

	problems = append(problems, checkScale("likelihood", p.LikelihoodScale)...)
	problems = append(problems, checkScale("impact", p.ImpactScale)...)

	hasFloor := false
	seen := make(map[string]bool, len(p.OverallBands))
	for _, b := range p.OverallBands {
		if seen[b.Band] {
			problems = append(problems, fmt.Sprintf("duplicate overall band %q", b.Band))
		}
		seen[b.Band] = true
		if b.MinScore == 0 {
			hasFloor = true
		}
	}
	if !hasFloor {
		problems = append(problems, "overall bands need one band with min_score 0")
	}

	names := make(map[string]bool)
	for _, t := range p.ThreatLevels {
		for _, n := range append([]string{t.Level}, t.Aliases...) {
			n = strings.ToLower(n)
			if names[n] {
				problems = append(problems, fmt.Sprintf("threat level name %q used twice", n))
			}
			names[n] = true
		}
	}
	return problems
}

func checkScale(name string, scale []ScaleLevel) []string {
	var problems []string
	for i, s := range scale {
		if s.Level != i+1 {
			problems = append(problems, fmt.Sprintf("%s scale entry %d has level %d", name, i, s.Level))
		}
		if i > 0 && s.MinScore <= scale[i-1].MinScore {
			problems = append(problems, fmt.Sprintf("%s scale min_score must increase (level %d)", name, s.Level))
		}
	}
	return problems
}
