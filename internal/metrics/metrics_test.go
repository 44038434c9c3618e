package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/liamcoop/riskscore/classifier"
	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/internal/logger"
	"github.com/liamcoop/riskscore/rules"
)

func TestObserveResult(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	res := &engine.RiskResult{
		Score:  30,
		Band:   classifier.BandMedium,
		Action: classifier.ActionRequestEDD,
		Contributions: []rules.Contribution{
			{RuleID: rules.RuleHighRiskCountry, Points: 20},
			{RuleID: rules.RuleMissingDocuments, Points: 10},
		},
	}
	m.ObserveResult(res, time.Millisecond)
	m.ObserveResult(res, time.Millisecond)

	if got := testutil.ToFloat64(m.Outcomes.WithLabelValues("Medium", "Request-EDD")); got != 2 {
		t.Errorf("outcomes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RuleTriggers.WithLabelValues(rules.RuleHighRiskCountry)); got != 2 {
		t.Errorf("rule triggers = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RuleTriggers.WithLabelValues(rules.RuleAdverseMedia)); got != 0 {
		t.Errorf("untriggered rule counted %v times", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveResult(&engine.RiskResult{}, time.Second)
}

func TestLoggerCountersAreExported(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegisterer(reg)

	logger.WarnValidation()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "riskscore_validation_failures_total" {
			if v := mf.GetMetric()[0].GetCounter().GetValue(); v < 1 {
				t.Errorf("validation failures = %v, want >= 1", v)
			}
			return
		}
	}
	t.Error("riskscore_validation_failures_total not registered")
}
