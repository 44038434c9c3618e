// Package policy holds the point values and thresholds used to score an
// onboarding profile. Every other package reads them from a Policy so the
// numbers live in one place.
package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Points is the score contributed by each rule when it triggers.
type Points struct {
	PEPSanctions       int `json:"pep_sanctions" yaml:"pep_sanctions"`
	HighRiskCountry    int `json:"high_risk_country" yaml:"high_risk_country"`
	HighAmount         int `json:"high_transaction_amount" yaml:"high_transaction_amount"`
	HighRiskOccupation int `json:"high_risk_occupation" yaml:"high_risk_occupation"`
	UnusualWealth      int `json:"unusual_source_of_wealth" yaml:"unusual_source_of_wealth"`
	MissingDocuments   int `json:"missing_documents" yaml:"missing_documents"`
	AdverseMedia       int `json:"adverse_media" yaml:"adverse_media"`
	AddressMismatch    int `json:"address_mismatch" yaml:"address_mismatch"`
}

// Policy is the full scoring configuration.
type Policy struct {
	Points Points `json:"points" yaml:"points"`

	// HighAmount is the inclusive lower bound of a high-value transaction.
	HighAmount decimal.Decimal `json:"high_amount" yaml:"high_amount"`

	// Band thresholds: score < MediumFrom is Low, score >= HighFrom is High.
	MediumFrom int `json:"medium_from" yaml:"medium_from"`
	HighFrom   int `json:"high_from" yaml:"high_from"`

	NameMatchThreshold    float64 `json:"name_match_threshold" yaml:"name_match_threshold"`
	AddressMatchThreshold float64 `json:"address_match_threshold" yaml:"address_match_threshold"`
}

// Default returns the standard scoring policy.
func Default() Policy {
	return Policy{
		Points: Points{
			PEPSanctions:       40,
			HighRiskCountry:    20,
			HighAmount:         15,
			HighRiskOccupation: 10,
			UnusualWealth:      10,
			MissingDocuments:   10,
			AdverseMedia:       15,
			AddressMismatch:    5,
		},
		HighAmount:            decimal.NewFromInt(100000),
		MediumFrom:            25,
		HighFrom:              60,
		NameMatchThreshold:    0.85,
		AddressMatchThreshold: 0.8,
	}
}

// LoadFile reads a YAML or JSON policy file. Keys that are absent keep their
// default value; unknown keys are an error.
func LoadFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a policy document on top of Default and validates the result.
func Parse(data []byte) (Policy, error) {
	p := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// Validate checks that the policy is internally consistent.
func (p Policy) Validate() error {
	points := []struct {
		name string
		v    int
	}{
		{"pep_sanctions", p.Points.PEPSanctions},
		{"high_risk_country", p.Points.HighRiskCountry},
		{"high_transaction_amount", p.Points.HighAmount},
		{"high_risk_occupation", p.Points.HighRiskOccupation},
		{"unusual_source_of_wealth", p.Points.UnusualWealth},
		{"missing_documents", p.Points.MissingDocuments},
		{"adverse_media", p.Points.AdverseMedia},
		{"address_mismatch", p.Points.AddressMismatch},
	}
	for _, pt := range points {
		if pt.v < 0 {
			return fmt.Errorf("points.%s must not be negative, got %d", pt.name, pt.v)
		}
	}

	if !p.HighAmount.IsPositive() {
		return fmt.Errorf("high_amount must be positive, got %s", p.HighAmount)
	}
	if p.MediumFrom <= 0 {
		return fmt.Errorf("medium_from must be positive, got %d", p.MediumFrom)
	}
	if p.MediumFrom >= p.HighFrom {
		return fmt.Errorf("medium_from (%d) must be below high_from (%d)", p.MediumFrom, p.HighFrom)
	}
	if p.NameMatchThreshold <= 0 || p.NameMatchThreshold > 1 {
		return fmt.Errorf("name_match_threshold must be in (0, 1], got %v", p.NameMatchThreshold)
	}
	if p.AddressMatchThreshold <= 0 || p.AddressMatchThreshold > 1 {
		return fmt.Errorf("address_match_threshold must be in (0, 1], got %v", p.AddressMatchThreshold)
	}
	return nil
}
