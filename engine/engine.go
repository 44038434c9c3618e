// Package engine scores an onboarding profile end to end: it validates the
// profile, runs the rule catalog and classifies the total.
package engine

import (
	"fmt"

	"github.com/liamcoop/riskscore/classifier"
	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/refdata"
	"github.com/liamcoop/riskscore/rules"
)

// RiskResult is the outcome of one evaluation. Score is always the sum of the
// contribution points.
type RiskResult struct {
	Score                  int                  `json:"score"`
	Band                   classifier.Band      `json:"band"`
	Action                 classifier.Action    `json:"action"`
	ActionDetail           string               `json:"action_detail"`
	Contributions          []rules.Contribution `json:"contributions"`
	SourceOfWealthCategory string               `json:"source_of_wealth_category"`
}

// Engine is safe for concurrent use.
type Engine struct {
	evaluator  *rules.Evaluator
	classifier classifier.Classifier
}

// New builds an engine over ref using the thresholds and points of pol.
func New(ref *refdata.ReferenceData, pol policy.Policy) (*Engine, error) {
	ev, err := rules.NewEvaluator(ref, pol)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule evaluator: %w", err)
	}
	return &Engine{evaluator: ev, classifier: classifier.New(pol)}, nil
}

// Run validates and scores a profile. It returns a *ValidationError when the
// profile is missing a name or a non-negative amount.
func (e *Engine) Run(p rules.Profile, docs rules.DocumentChecklist, ocrAddressText string) (*RiskResult, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	contributions, err := e.evaluator.Evaluate(p, docs, ocrAddressText)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate rules: %w", err)
	}

	score := rules.Total(contributions)
	band, action := e.classifier.Classify(score)

	return &RiskResult{
		Score:                  score,
		Band:                   band,
		Action:                 action,
		ActionDetail:           band.Recommendation(),
		Contributions:          contributions,
		SourceOfWealthCategory: CategorizeSourceOfWealth(p.SourceOfWealth),
	}, nil
}

// Rules returns the catalog the engine evaluates, in order.
func (e *Engine) Rules() []rules.Rule {
	return e.evaluator.Catalog()
}

// Policy returns the scoring policy in effect.
func (e *Engine) Policy() policy.Policy {
	return e.evaluator.Policy()
}
