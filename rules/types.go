package rules

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Purpose is the applicant's stated reason for the transaction.
type Purpose string

const (
	PurposeInvestment            Purpose = "Investment"
	PurposePropertyPurchase      Purpose = "Property Purchase"
	PurposeBusinessOperations    Purpose = "Business Operations"
	PurposeSavings               Purpose = "Savings/Deposit"
	PurposeLoanRepayment         Purpose = "Loan Repayment"
	PurposeInternationalTransfer Purpose = "International Transfer"
	PurposeOther                 Purpose = "Other"
)

const dateLayout = "2006-01-02"

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the date for year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	d.Time = t
	return nil
}

// Profile is a submitted onboarding profile. It is treated as an immutable
// value and passed by value.
type Profile struct {
	FullName       string              `json:"full_name"`
	DateOfBirth    Date                `json:"date_of_birth"`
	Nationality    string              `json:"nationality"`
	Address        string              `json:"address"`
	Occupation     string              `json:"occupation"`
	Email          string              `json:"email"`
	Amount         decimal.NullDecimal `json:"amount"`
	SourceOfWealth string              `json:"source_of_wealth"`
	Purpose        Purpose             `json:"purpose"`
}

// DocumentChecklist records which of the four required documents were
// provided.
type DocumentChecklist struct {
	Identity               bool `json:"identity"`
	Selfie                 bool `json:"selfie"`
	ProofOfAddress         bool `json:"proof_of_address"`
	SourceOfWealthEvidence bool `json:"source_of_wealth_evidence"`
}

// AllDocuments is a checklist with every document present.
var AllDocuments = DocumentChecklist{Identity: true, Selfie: true, ProofOfAddress: true, SourceOfWealthEvidence: true}

// Missing returns the display names of absent documents in checklist order.
func (d DocumentChecklist) Missing() []string {
	var missing []string
	if !d.Identity {
		missing = append(missing, "Identity Document")
	}
	if !d.Selfie {
		missing = append(missing, "Selfie")
	}
	if !d.ProofOfAddress {
		missing = append(missing, "Proof of Address")
	}
	if !d.SourceOfWealthEvidence {
		missing = append(missing, "Source of Wealth Evidence")
	}
	return missing
}

// Rule describes one entry of the scoring catalog
type Rule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Expression  string `json:"expression"`
	Points      int    `json:"points"`
}

// Contribution is the outcome of a rule that triggered. Name may differ from
// the catalog name when the rule reports which list matched.
type Contribution struct {
	RuleID      string `json:"rule_id"`
	Name        string `json:"name"`
	Points      int    `json:"points"`
	Explanation string `json:"explanation"`
}

// Total sums the points of contributions.
func Total(contributions []Contribution) int {
	total := 0
	for _, c := range contributions {
		total += c.Points
	}
	return total
}
