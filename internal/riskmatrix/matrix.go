// Package riskmatrix turns questionnaire answers, weighted risk factors or an
// explicit matrix cell into a probability x impact risk assessment.
package riskmatrix

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/model"
)

// Source records where the matrix position came from.
type Source string

const (
	SourceQuestionnaire Source = "questionnaire"
	SourceManual        Source = "manual"
)

// Cell is an explicit matrix position. Zero fields are derived instead.
type Cell struct {
	Probability int `json:"probability,omitempty" yaml:"probability,omitempty" jsonschema:"probability 1-5, 0 to derive"`
	Impact      int `json:"impact,omitempty" yaml:"impact,omitempty" jsonschema:"impact 1-5, 0 to derive"`
}

// Input is everything a caller may supply for one assessment.
type Input struct {
	// Responses maps question IDs to answer values.
	Responses map[string]string `json:"responses,omitempty" yaml:"responses,omitempty"`
	// Factors overrides factor activation by ID.
	Factors map[string]bool `json:"factors,omitempty" yaml:"factors,omitempty"`
	// Cell overrides the derived probability and/or impact.
	Cell *Cell `json:"cell,omitempty" yaml:"cell,omitempty"`
}

// Assessment is a freshly computed risk classification.
type Assessment struct {
	Probability     int                  `json:"probability"`
	Impact          int                  `json:"impact"`
	Score           int                  `json:"score"`
	Band            string               `json:"band"`
	BandLabel       string               `json:"band_label"`
	Color           string               `json:"color"`
	RecommendedTier model.ProtectionTier `json:"recommended_tier"`
	Guidance        string               `json:"guidance,omitempty"`
	Factors         []catalog.RiskFactor `json:"factors"`
	Confidence      int                  `json:"confidence"`
	Source          Source               `json:"source"`
	Warnings        []string             `json:"warnings,omitempty"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Engine scores risk against one catalog. It holds no per-assessment state.
type Engine struct {
	cat *catalog.RiskCatalog
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over cat.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{cat: &cat.Risk, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromMatrix scores an explicit probability/impact pair.
func (e *Engine) FromMatrix(probability, impact int) Assessment {
	return e.Assess(Input{Cell: &Cell{Probability: probability, Impact: impact}})
}

// FromFactors scores a set of factor activations.
func (e *Engine) FromFactors(factors map[string]bool) Assessment {
	return e.Assess(Input{Factors: factors})
}

// FromQuestionnaire scores questionnaire responses.
func (e *Engine) FromQuestionnaire(responses map[string]string) Assessment {
	return e.Assess(Input{Responses: responses})
}

// dimState accumulates evidence for one matrix axis.
type dimState struct {
	answerLevel int
	answered    int
	questions   int
	explicit    int
	factors     int
	weight      int
}

// Assess computes an assessment. Identical input yields an identical result apart from UpdatedAt.
func (e *Engine) Assess(in Input) Assessment {
	var warnings []string
	dims := map[catalog.Dimension]*dimState{
		catalog.DimensionProbability: {},
		catalog.DimensionImpact:      {},
	}

	active := make(map[string]bool, len(e.cat.Factors))
	for _, f := range e.cat.Factors {
		active[f.ID] = f.Active
		dims[f.Dimension].factors++
	}
	for _, q := range e.cat.Questions {
		dims[q.Dimension].questions++
	}

	for _, qid := range sortedKeys(in.Responses) {
		q, ok := e.question(qid)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown question %q ignored", qid))
			continue
		}
		ans, ok := q.Answer(in.Responses[qid])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("question %s: unknown answer %q ignored", qid, in.Responses[qid]))
			continue
		}
		d := dims[q.Dimension]
		d.answered++
		d.answerLevel = max(d.answerLevel, ans.Level)
		for _, id := range ans.Activates {
			active[id] = true
		}
	}

	for _, id := range sortedKeys(in.Factors) {
		f, ok := e.cat.Factor(id)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown risk factor %q ignored", id))
			continue
		}
		active[id] = in.Factors[id]
		dims[f.Dimension].explicit++
	}

	contributing := []catalog.RiskFactor{}
	for _, f := range e.cat.Factors {
		if !active[f.ID] {
			continue
		}
		f.Active = true
		contributing = append(contributing, f)
		dims[f.Dimension].weight += f.Weight
	}

	probability := e.level(dims[catalog.DimensionProbability])
	impact := e.level(dims[catalog.DimensionImpact])

	var cellP, cellI bool
	if in.Cell != nil {
		if in.Cell.Probability != 0 {
			probability, cellP = clampLevel(in.Cell.Probability, "probability", &warnings), true
		}
		if in.Cell.Impact != 0 {
			impact, cellI = clampLevel(in.Cell.Impact, "impact", &warnings), true
		}
	}

	useQuestionnaire := len(in.Responses) > 0
	completeness := (e.completeness(dims[catalog.DimensionProbability], cellP, useQuestionnaire) +
		e.completeness(dims[catalog.DimensionImpact], cellI, useQuestionnaire)) / 2

	score := probability * impact
	band, _ := e.cat.BandFor(score)

	source := SourceQuestionnaire
	if in.Cell != nil || !useQuestionnaire {
		source = SourceManual
	}

	return Assessment{
		Probability:     probability,
		Impact:          impact,
		Score:           score,
		Band:            band.Name,
		BandLabel:       band.Label,
		Color:           band.Color,
		RecommendedTier: band.RecommendedTier,
		Guidance:        band.Guidance,
		Factors:         contributing,
		Confidence:      e.confidence(completeness),
		Source:          source,
		Warnings:        warnings,
		UpdatedAt:       e.now(),
	}
}

// level derives one axis: the highest answered level, raised by active factor weight.
// With no evidence at all the catalog default applies.
func (e *Engine) level(d *dimState) int {
	lvl := d.answerLevel
	if d.weight > 0 {
		fromWeight := int(math.Ceil(float64(d.weight) / float64(e.cat.WeightPerLevel)))
		lvl = max(lvl, min(max(fromWeight, 1), 5))
	}
	if lvl == 0 {
		return e.cat.DefaultLevel
	}
	return lvl
}

// completeness is the share of expected inputs supplied for one axis, in [0,1].
func (e *Engine) completeness(d *dimState, fromCell, useQuestionnaire bool) float64 {
	if fromCell {
		return 1
	}
	supplied, expected := d.explicit, d.factors
	if useQuestionnaire {
		supplied, expected = d.answered, d.questions
	}
	if expected == 0 {
		return 0
	}
	return math.Min(1, float64(supplied)/float64(expected))
}

func (e *Engine) confidence(completeness float64) int {
	floor := e.cat.ConfidenceFloor
	c := floor + int(math.Round(float64(100-floor)*completeness))
	return min(max(c, floor), 100)
}

func (e *Engine) question(id string) (catalog.Question, bool) {
	for _, q := range e.cat.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return catalog.Question{}, false
}

func clampLevel(v int, axis string, warnings *[]string) int {
	c := min(max(v, 1), 5)
	if c != v {
		*warnings = append(*warnings, fmt.Sprintf("%s %d clamped to %d", axis, v, c))
	}
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
