package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/refdata"
)

// Rule identifiers in evaluation order.
const (
	RulePEPSanctions       = "pep_sanctions_match"
	RuleHighRiskCountry    = "high_risk_country"
	RuleHighAmount         = "high_transaction_amount"
	RuleHighRiskOccupation = "high_risk_occupation"
	RuleUnusualWealth      = "unusual_source_of_wealth"
	RuleMissingDocuments   = "missing_documents"
	RuleAdverseMedia       = "adverse_media"
	RuleAddressMismatch    = "address_mismatch"
)

// definition pairs a catalog entry with the function that renders its
// contribution name and explanation from the facts.
type definition struct {
	Rule
	explain func(f *Facts) (name, text string)
}

// catalog returns the fixed rule list. Order is the order of contributions in
// every result.
func catalog(pol policy.Policy) []definition {
	return []definition{
		{
			Rule: Rule{
				ID:          RulePEPSanctions,
				Name:        "PEP/Sanctions Match",
				Description: "Applicant name matches a PEP or sanctions list entry",
				Expression:  `Screening.PEPMatched || Screening.SanctionsMatched`,
				Points:      pol.Points.PEPSanctions,
			},
			explain: func(f *Facts) (string, string) {
				// PEP takes priority when both lists match
				list, name := refdata.ListPEP, f.Screening.PEP.Entry.Name
				if !f.Screening.PEP.Matched {
					list, name = refdata.ListSanctions, f.Screening.Sanctions.Entry.Name
				}
				return fmt.Sprintf("%s Match", list),
					fmt.Sprintf("Client name matches %s list entry: %s", list, name)
			},
		},
		{
			Rule: Rule{
				ID:          RuleHighRiskCountry,
				Name:        "High-Risk Country",
				Description: "Nationality is a high-risk jurisdiction",
				Expression:  `Screening.HighRiskCountry != ""`,
				Points:      pol.Points.HighRiskCountry,
			},
			explain: func(f *Facts) (string, string) {
				return "High-Risk Country",
					fmt.Sprintf("Client associated with high-risk jurisdiction: %s", f.Screening.HighRiskCountry)
			},
		},
		{
			Rule: Rule{
				ID:          RuleHighAmount,
				Name:        "High Transaction Amount",
				Description: fmt.Sprintf("Transaction amount is %s or more", pol.HighAmount),
				Expression:  `Limits.AmountVsHigh >= 0`,
				Points:      pol.Points.HighAmount,
			},
			explain: func(f *Facts) (string, string) {
				return "High Transaction Amount",
					fmt.Sprintf("Transaction amount (%s) meets or exceeds threshold of %s", f.Profile.Amount, f.Limits.HighAmount)
			},
		},
		{
			Rule: Rule{
				ID:          RuleHighRiskOccupation,
				Name:        "High-Risk Occupation",
				Description: "Occupation is in a high-risk industry",
				Expression:  `Screening.Occupation != ""`,
				Points:      pol.Points.HighRiskOccupation,
			},
			explain: func(f *Facts) (string, string) {
				return "High-Risk Occupation",
					fmt.Sprintf("Client occupation in high-risk industry: %s", f.Screening.Occupation)
			},
		},
		{
			Rule: Rule{
				ID:          RuleUnusualWealth,
				Name:        "Unusual Source of Wealth",
				Description: "Source of wealth narrative contains red-flag terms",
				Expression:  `size(Screening.WealthKeywords) > 0`,
				Points:      pol.Points.UnusualWealth,
			},
			explain: func(f *Facts) (string, string) {
				return "Unusual Source of Wealth",
					fmt.Sprintf("Source of wealth contains red-flag terms: %s", strings.Join(f.Screening.WealthKeywords, ", "))
			},
		},
		{
			Rule: Rule{
				ID:          RuleMissingDocuments,
				Name:        "Missing Documents",
				Description: "One or more required documents were not provided",
				Expression:  `size(Documents.Missing) > 0`,
				Points:      pol.Points.MissingDocuments,
			},
			explain: func(f *Facts) (string, string) {
				return "Missing Documents",
					fmt.Sprintf("Required documents missing: %s", strings.Join(f.Documents.Missing, ", "))
			},
		},
		{
			Rule: Rule{
				ID:          RuleAdverseMedia,
				Name:        "Adverse Media",
				Description: "Applicant name matches an adverse media entry",
				Expression:  `Screening.AdverseMediaMatched`,
				Points:      pol.Points.AdverseMedia,
			},
			explain: func(f *Facts) (string, string) {
				e := f.Screening.AdverseMedia.Entry
				return "Adverse Media",
					fmt.Sprintf("Client name matches adverse media entry: %s (%s)", e.Name, e.Headline)
			},
		},
		{
			Rule: Rule{
				ID:          RuleAddressMismatch,
				Name:        "Address Mismatch",
				Description: "Address on the identity document differs from the submitted address",
				Expression: `Documents.OCRProvided && Profile.AddressTokens > 0 &&
					Screening.AddressCoverage < Limits.AddressMatchThreshold`,
				Points: pol.Points.AddressMismatch,
			},
			explain: func(f *Facts) (string, string) {
				pct := int(math.Round(f.Screening.AddressCoverage * 100))
				return "Address Mismatch",
					fmt.Sprintf("Address on ID document differs from provided address (%d%% of address terms found)", pct)
			},
		},
	}
}
