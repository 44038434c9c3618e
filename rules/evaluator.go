// Package rules applies the fixed onboarding risk rule catalog to a profile.
//
// Each rule is a CEL predicate over Facts that are derived in Go before
// evaluation. Programs are compiled once when the Evaluator is built and are
// read-only afterwards, so an Evaluator is safe for concurrent use.
package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/riskscore/namematch"
	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/refdata"
)

// costLimit bounds the work a single predicate may do.
const costLimit = 1000000

type compiledRule struct {
	definition
	prog cel.Program
}

type occupation struct {
	name string
	key  string
}

// Evaluator scores profiles against the rule catalog.
type Evaluator struct {
	env     *cel.Env
	ref     *refdata.ReferenceData
	pol     policy.Policy
	matcher namematch.Matcher
	rules   []compiledRule

	peps         []refdata.WatchlistEntry
	sanctions    []refdata.WatchlistEntry
	adverseMedia []refdata.AdverseMediaEntry
	occupations  []occupation
	keywords     []string
}

// NewEnv returns the CEL environment rule predicates are compiled in.
func NewEnv() (*cel.Env, error) {
	// Facts are bound as maps, so the top-level objects are dynamic
	env, err := cel.NewEnv(
		cel.Variable("Profile", cel.DynType),
		cel.Variable("Documents", cel.DynType),
		cel.Variable("Screening", cel.DynType),
		cel.Variable("Limits", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// NewEvaluator validates pol and compiles every catalog rule.
func NewEvaluator(ref *refdata.ReferenceData, pol policy.Policy) (*Evaluator, error) {
	if ref == nil {
		return nil, fmt.Errorf("reference data is required")
	}
	if err := pol.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	env, err := NewEnv()
	if err != nil {
		return nil, err
	}

	ev := &Evaluator{
		env:          env,
		ref:          ref,
		pol:          pol,
		matcher:      namematch.NewMatcher(pol.NameMatchThreshold),
		peps:         ref.PEPs(),
		sanctions:    ref.Sanctions(),
		adverseMedia: ref.AdverseMedia(),
		keywords:     ref.WealthKeywords(),
	}
	for _, o := range ref.Occupations() {
		ev.occupations = append(ev.occupations, occupation{name: o, key: namematch.Fold(o)})
	}

	for _, def := range catalog(pol) {
		prog, err := ev.compile(def.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", def.ID, err)
		}
		ev.rules = append(ev.rules, compiledRule{definition: def, prog: prog})
	}

	return ev, nil
}

func (ev *Evaluator) compile(expression string) (cel.Program, error) {
	ast, issues := ev.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := ev.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return prog, nil
}

// Catalog returns the rule definitions in evaluation order.
func (ev *Evaluator) Catalog() []Rule {
	out := make([]Rule, len(ev.rules))
	for i, r := range ev.rules {
		out[i] = r.Rule
	}
	return out
}

// Policy returns the policy the evaluator was built with.
func (ev *Evaluator) Policy() policy.Policy {
	return ev.pol
}

// Evaluate applies every rule in catalog order and returns one contribution
// per rule that triggered. An empty result means nothing triggered. An error
// is only returned if a predicate itself fails to evaluate.
func (ev *Evaluator) Evaluate(p Profile, docs DocumentChecklist, ocrAddressText string) ([]Contribution, error) {
	facts := ev.deriveFacts(p, docs, ocrAddressText)
	vars := facts.Activation()

	contributions := make([]Contribution, 0, len(ev.rules))
	for _, r := range ev.rules {
		out, _, err := r.prog.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("rule %s: evaluation failed: %w", r.ID, err)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return nil, fmt.Errorf("rule %s: expression returned %T, want bool", r.ID, out.Value())
		}
		if !matched {
			continue
		}

		name, text := r.explain(facts)
		contributions = append(contributions, Contribution{
			RuleID:      r.ID,
			Name:        name,
			Points:      r.Points,
			Explanation: text,
		})
	}

	return contributions, nil
}
