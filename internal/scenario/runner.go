package scenario

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/credential"
	"github.com/ppiankov/protectwatch/internal/model"
	"github.com/ppiankov/protectwatch/internal/premises"
	"github.com/ppiankov/protectwatch/internal/riskmatrix"
)

// runner holds the engines shared by every case in one scenario.
type runner struct {
	risk       *riskmatrix.Engine
	credential *credential.Engine
	planner    *premises.Planner
}

// Run evaluates all cases in a scenario against the given catalog.
// Licence checks use an in-memory register seeded from the scenario, so runs
// are offline and deterministic.
func Run(ctx context.Context, s *Scenario, cat *catalog.Catalog) *RunResult {
	now := time.Now
	if !s.AsOf.IsZero() {
		asOf := s.AsOf
		now = func() time.Time { return asOf }
	}

	registry := credential.NewSimulatedRegistry(cat.Credentials, s.Registry...).
		WithLatency(0).
		WithClock(now)

	r := &runner{
		risk:       riskmatrix.New(cat, riskmatrix.WithClock(now)),
		credential: credential.New(cat, credential.WithRegistry(registry), credential.WithClock(now)),
		planner:    premises.New(cat, premises.WithClock(now)),
	}

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		cr := r.evaluate(ctx, c)
		cr.Index = i + 1
		cr.Expected = strings.ToLower(strings.TrimSpace(c.Expect))

		if cr.Actual == cr.Expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result
}

func (r *runner) evaluate(ctx context.Context, c Case) CaseResult {
	kind := c.kind()
	cr := CaseResult{Kind: kind, Subject: c.Name}

	switch kind {
	case KindRisk:
		a := r.risk.Assess(*c.Risk)
		cr.Actual = strings.ToLower(a.Band)
		cr.Reason = fmt.Sprintf("score %d (%dx%d), confidence %d%%", a.Score, a.Probability, a.Impact, a.Confidence)

	case KindLicense:
		if cr.Subject == "" {
			cr.Subject = c.License
		}
		res, _ := r.credential.VerifyLicense(ctx, c.License)
		switch {
		case res.Unverifiable:
			cr.Actual = "unverifiable"
		case res.Valid:
			cr.Actual = "valid"
		default:
			cr.Actual = "invalid"
		}
		cr.Reason = firstOf(res.Errors, res.Warnings)

	case KindOfficer:
		if cr.Subject == "" {
			cr.Subject = c.Officer.Name
		}
		tier, err := model.ParseTier(c.Tier)
		if err != nil {
			return errorResult(cr, err)
		}
		rep := r.credential.EvaluateOfficer(*c.Officer, tier)
		cr.Actual = "non_compliant"
		if rep.Compliant {
			cr.Actual = "compliant"
		}
		cr.Reason = firstOf(rep.Requirements.Missing, rep.Insurance.Issues)
		if cr.Reason == "" {
			cr.Reason = fmt.Sprintf("score %d/%d", rep.Score.Score, rep.Score.MaxScore)
		}

	case KindVenue:
		if cr.Subject == "" {
			cr.Subject = c.Venue.Name
		}
		ra, err := r.planner.ConductTerrorismRiskAssessment(*c.Venue, c.Threat)
		if err != nil {
			return errorResult(cr, err)
		}
		cr.Actual = string(ra.OverallRisk)
		cr.Reason = fmt.Sprintf("score %d/25, %s tier", ra.Matrix.Score, r.planner.DetermineComplianceTier(c.Venue.Capacity))

	default:
		return errorResult(cr, fmt.Errorf("cannot determine case kind %q", c.Kind))
	}
	return cr
}

// kind returns the declared kind, or infers it from the populated input.
func (c Case) kind() string {
	switch k := strings.ToLower(c.Kind); {
	case k == KindRisk && c.Risk != nil,
		k == KindLicense && c.License != "",
		k == KindOfficer && c.Officer != nil,
		k == KindVenue && c.Venue != nil:
		return k
	case k != "":
		return ""
	}
	switch {
	case c.Risk != nil:
		return KindRisk
	case c.License != "":
		return KindLicense
	case c.Officer != nil:
		return KindOfficer
	case c.Venue != nil:
		return KindVenue
	}
	return ""
}

func errorResult(cr CaseResult, err error) CaseResult {
	cr.Actual = "error"
	cr.Reason = err.Error()
	return cr
}

func firstOf(lists ...[]string) string {
	for _, l := range lists {
		if len(l) > 0 {
			return l[0]
		}
	}
	return ""
}

// Load reads and parses a scenario YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadAndRun loads a scenario YAML file and the catalog, and runs.
func LoadAndRun(ctx context.Context, path, catalogPath string) (*RunResult, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	result := Run(ctx, s, cat)
	result.File = path

	return result, nil
}
