// Package classifier maps a risk score to a band and a recommended action.
package classifier

import "github.com/liamcoop/riskscore/policy"

// Band is a risk classification.
type Band string

const (
	BandLow    Band = "Low"
	BandMedium Band = "Medium"
	BandHigh   Band = "High"
)

// Action is the recommended onboarding decision.
type Action string

const (
	ActionApprove    Action = "Approve"
	ActionRequestEDD Action = "Request-EDD"
	ActionReject     Action = "Reject"
)

// Bands lists every band from lowest to highest risk.
var Bands = []Band{BandLow, BandMedium, BandHigh}

// Valid reports whether b is a known band.
func (b Band) Valid() bool {
	switch b {
	case BandLow, BandMedium, BandHigh:
		return true
	}
	return false
}

// Action returns the action recommended for the band.
func (b Band) Action() Action {
	switch b {
	case BandLow:
		return ActionApprove
	case BandMedium:
		return ActionRequestEDD
	default:
		return ActionReject
	}
}

// Recommendation returns the long-form text shown to reviewers.
func (b Band) Recommendation() string {
	switch b {
	case BandLow:
		return "APPROVE - Proceed with standard onboarding"
	case BandMedium:
		return "REQUEST EDD - Enhanced Due Diligence required"
	case BandHigh:
		return "REJECT - Decline application or escalate to compliance"
	default:
		return "REVIEW - Manual review required"
	}
}

// Classifier holds the band thresholds.
type Classifier struct {
	mediumFrom int
	highFrom   int
}

// New returns a Classifier using the band thresholds of pol.
func New(pol policy.Policy) Classifier {
	return Classifier{mediumFrom: pol.MediumFrom, highFrom: pol.HighFrom}
}

// Classify maps score to its band and action. Each band includes its lower
// bound: with the default policy 25 is Medium and 60 is High.
func (c Classifier) Classify(score int) (Band, Action) {
	var band Band
	switch {
	case score >= c.highFrom:
		band = BandHigh
	case score >= c.mediumFrom:
		band = BandMedium
	default:
		band = BandLow
	}
	return band, band.Action()
}
