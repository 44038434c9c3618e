package rules

import (
	"strings"

	"github.com/liamcoop/riskscore/namematch"
	"github.com/liamcoop/riskscore/refdata"
)

// Facts is everything the rule predicates see. It is derived once per
// evaluation from the profile, the document checklist, the OCR text and the
// reference data.
type Facts struct {
	Profile   ProfileFacts
	Documents DocumentFacts
	Screening ScreeningFacts
	Limits    LimitFacts
}

// ProfileFacts carries the submitted values rules report on.
type ProfileFacts struct {
	FullName      string
	Nationality   string
	Occupation    string
	Amount        string
	AddressTokens int
}

// DocumentFacts describes document completeness and OCR availability.
type DocumentFacts struct {
	Missing     []string
	OCRProvided bool
}

// ScreeningFacts holds the reference data lookups.
type ScreeningFacts struct {
	PEP             namematch.Result[refdata.WatchlistEntry]
	Sanctions       namematch.Result[refdata.WatchlistEntry]
	AdverseMedia    namematch.Result[refdata.AdverseMediaEntry]
	HighRiskCountry string
	Occupation      string
	WealthKeywords  []string
	AddressCoverage float64
}

// LimitFacts exposes policy thresholds. AmountVsHigh is the sign of
// amount - high amount, computed with decimal arithmetic.
type LimitFacts struct {
	HighAmount            string
	AmountVsHigh          int
	AddressMatchThreshold float64
}

// Activation converts the facts into the variables bound into each CEL
// program.
func (f *Facts) Activation() map[string]any {
	return map[string]any{
		"Profile": map[string]any{
			"FullName":      f.Profile.FullName,
			"Nationality":   f.Profile.Nationality,
			"Occupation":    f.Profile.Occupation,
			"Amount":        f.Profile.Amount,
			"AddressTokens": f.Profile.AddressTokens,
		},
		"Documents": map[string]any{
			"Missing":     stringList(f.Documents.Missing),
			"OCRProvided": f.Documents.OCRProvided,
		},
		"Screening": map[string]any{
			"PEPMatched":          f.Screening.PEP.Matched,
			"SanctionsMatched":    f.Screening.Sanctions.Matched,
			"AdverseMediaMatched": f.Screening.AdverseMedia.Matched,
			"HighRiskCountry":     f.Screening.HighRiskCountry,
			"Occupation":          f.Screening.Occupation,
			"WealthKeywords":      stringList(f.Screening.WealthKeywords),
			"AddressCoverage":     f.Screening.AddressCoverage,
		},
		"Limits": map[string]any{
			"HighAmount":            f.Limits.HighAmount,
			"AmountVsHigh":          f.Limits.AmountVsHigh,
			"AddressMatchThreshold": f.Limits.AddressMatchThreshold,
		},
	}
}

func stringList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// deriveFacts performs every lookup the catalog needs. It never fails: a
// lookup that finds nothing leaves its fact at the zero value.
func (ev *Evaluator) deriveFacts(p Profile, docs DocumentChecklist, ocr string) *Facts {
	f := &Facts{
		Profile: ProfileFacts{
			FullName:    p.FullName,
			Nationality: p.Nationality,
			Occupation:  p.Occupation,
		},
		Documents: DocumentFacts{
			Missing:     docs.Missing(),
			OCRProvided: strings.TrimSpace(ocr) != "",
		},
		Limits: LimitFacts{
			HighAmount:            ev.pol.HighAmount.String(),
			AddressMatchThreshold: ev.pol.AddressMatchThreshold,
		},
	}

	if p.Amount.Valid {
		f.Profile.Amount = p.Amount.Decimal.String()
		f.Limits.AmountVsHigh = p.Amount.Decimal.Cmp(ev.pol.HighAmount)
	} else {
		f.Limits.AmountVsHigh = -1
	}

	f.Screening.PEP = namematch.Match(ev.matcher, p.FullName, ev.peps)
	f.Screening.Sanctions = namematch.Match(ev.matcher, p.FullName, ev.sanctions)
	f.Screening.AdverseMedia = namematch.Match(ev.matcher, p.FullName, ev.adverseMedia)

	if name, ok := ev.ref.HighRiskJurisdiction(p.Nationality); ok {
		f.Screening.HighRiskCountry = name
	}
	f.Screening.Occupation = ev.matchOccupation(p.Occupation)
	f.Screening.WealthKeywords = ev.matchWealthKeywords(p.SourceOfWealth)

	if f.Documents.OCRProvided {
		f.Screening.AddressCoverage, f.Profile.AddressTokens = addressCoverage(p.Address, ocr)
	}

	return f
}

// matchOccupation returns the first high-risk occupation whose folded form
// equals or is contained in the folded occupation text.
func (ev *Evaluator) matchOccupation(occupation string) string {
	folded := namematch.Fold(occupation)
	if folded == "" {
		return ""
	}
	for _, o := range ev.occupations {
		if o.key != "" && strings.Contains(folded, o.key) {
			return o.name
		}
	}
	return ""
}

// matchWealthKeywords returns every keyword contained in the narrative, in
// keyword list order.
func (ev *Evaluator) matchWealthKeywords(narrative string) []string {
	text := strings.ToLower(narrative)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var found []string
	for _, kw := range ev.keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}
