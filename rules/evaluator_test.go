package rules

import (
	"reflect"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/shopspring/decimal"

	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/refdata"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ref, err := refdata.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() failed: %v", err)
	}
	ev, err := NewEvaluator(ref, policy.Default())
	if err != nil {
		t.Fatalf("NewEvaluator() failed: %v", err)
	}
	return ev
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func cleanProfile() Profile {
	return Profile{
		FullName:       "Jane Smith",
		DateOfBirth:    NewDate(1985, 4, 12),
		Nationality:    "Singapore",
		Address:        "12 Orchard Road Singapore",
		Occupation:     "Teacher",
		Email:          "jane@example.com",
		Amount:         amount("5000"),
		SourceOfWealth: "Monthly salary from employment",
		Purpose:        PurposeSavings,
	}
}

func ruleIDs(cs []Contribution) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.RuleID
	}
	return ids
}

func TestNewEvaluatorRequiresReferenceData(t *testing.T) {
	if _, err := NewEvaluator(nil, policy.Default()); err == nil {
		t.Error("NewEvaluator() should fail without reference data")
	}
}

func TestNewEvaluatorRejectsInvalidPolicy(t *testing.T) {
	ref, err := refdata.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() failed: %v", err)
	}
	pol := policy.Default()
	pol.MediumFrom = 90

	if _, err := NewEvaluator(ref, pol); err == nil {
		t.Error("NewEvaluator() should reject an invalid policy")
	}
}

func TestCatalogOrder(t *testing.T) {
	ev := newTestEvaluator(t)

	want := []string{
		RulePEPSanctions,
		RuleHighRiskCountry,
		RuleHighAmount,
		RuleHighRiskOccupation,
		RuleUnusualWealth,
		RuleMissingDocuments,
		RuleAdverseMedia,
		RuleAddressMismatch,
	}
	wantPoints := []int{40, 20, 15, 10, 10, 10, 15, 5}

	cat := ev.Catalog()
	if len(cat) != len(want) {
		t.Fatalf("Catalog() has %d rules, want %d", len(cat), len(want))
	}
	for i, r := range cat {
		if r.ID != want[i] {
			t.Errorf("Catalog()[%d].ID = %s, want %s", i, r.ID, want[i])
		}
		if r.Points != wantPoints[i] {
			t.Errorf("Catalog()[%d].Points = %d, want %d", i, r.Points, wantPoints[i])
		}
		if r.Expression == "" {
			t.Errorf("Catalog()[%d] has no expression", i)
		}
	}
}

func TestEvaluateCleanProfile(t *testing.T) {
	ev := newTestEvaluator(t)

	got, err := ev.Evaluate(cleanProfile(), AllDocuments, "")
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("clean profile should trigger nothing, got %v", ruleIDs(got))
	}
}

func TestEvaluateEachRule(t *testing.T) {
	ev := newTestEvaluator(t)

	testCases := []struct {
		name     string
		mutate   func(p *Profile, d *DocumentChecklist, ocr *string)
		wantRule string
		wantName string
		wantText string
		points   int
	}{
		{
			name:     "PEP with middle initial",
			mutate:   func(p *Profile, _ *DocumentChecklist, _ *string) { p.FullName = "Donald J. Trump" },
			wantRule: RulePEPSanctions,
			wantName: "PEP Match",
			wantText: "Donald Trump",
			points:   40,
		},
		{
			name:     "sanctions",
			mutate:   func(p *Profile, _ *DocumentChecklist, _ *string) { p.FullName = "kim   jong un" },
			wantRule: RulePEPSanctions,
			wantName: "Sanctions Match",
			wantText: "Kim Jong Un",
			points:   40,
		},
		{
			name:     "high-risk country",
			mutate:   func(p *Profile, _ *DocumentChecklist, _ *string) { p.Nationality = "iran" },
			wantRule: RuleHighRiskCountry,
			wantName: "High-Risk Country",
			wantText: "Iran",
			points:   20,
		},
		{
			name:     "high-risk country alias",
			mutate:   func(p *Profile, _ *DocumentChecklist, _ *string) { p.Nationality = "Burma" },
			wantRule: RuleHighRiskCountry,
			wantName: "High-Risk Country",
			wantText: "Myanmar",
			points:   20,
		},
		{
			name:     "amount at threshold",
			mutate:   func(p *Profile, _ *DocumentChecklist, _ *string) { p.Amount = amount("100000") },
			wantRule: RuleHighAmount,
			wantName: "High Transaction Amount",
			wantText: "100000",
			points:   15,
		},
		{
			name:     "occupation substring",
			mutate:   func(p *Profile, _ *DocumentChecklist, _ *string) { p.Occupation = "Casino Floor Manager" },
			wantRule: RuleHighRiskOccupation,
			wantName: "High-Risk Occupation",
			wantText: "Casino",
			points:   10,
		},
		{
			name: "unusual source of wealth",
			mutate: func(p *Profile, _ *DocumentChecklist, _ *string) {
				p.SourceOfWealth = "Inheritance from a relative"
			},
			wantRule: RuleUnusualWealth,
			wantName: "Unusual Source of Wealth",
			wantText: "inheritance",
			points:   10,
		},
		{
			name:     "missing document",
			mutate:   func(_ *Profile, d *DocumentChecklist, _ *string) { d.Selfie = false },
			wantRule: RuleMissingDocuments,
			wantName: "Missing Documents",
			wantText: "Selfie",
			points:   10,
		},
		{
			name:     "adverse media",
			mutate:   func(p *Profile, _ *DocumentChecklist, _ *string) { p.FullName = "Jho Low" },
			wantRule: RuleAdverseMedia,
			wantName: "Adverse Media",
			wantText: "Jho Low",
			points:   15,
		},
		{
			name:     "address mismatch",
			mutate:   func(_ *Profile, _ *DocumentChecklist, ocr *string) { *ocr = "45 Baker Street, London" },
			wantRule: RuleAddressMismatch,
			wantName: "Address Mismatch",
			wantText: "0%",
			points:   5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, docs, ocr := cleanProfile(), AllDocuments, ""
			tc.mutate(&p, &docs, &ocr)

			got, err := ev.Evaluate(p, docs, ocr)
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected exactly one contribution, got %v", ruleIDs(got))
			}

			c := got[0]
			if c.RuleID != tc.wantRule {
				t.Errorf("RuleID = %s, want %s", c.RuleID, tc.wantRule)
			}
			if c.Name != tc.wantName {
				t.Errorf("Name = %q, want %q", c.Name, tc.wantName)
			}
			if c.Points != tc.points {
				t.Errorf("Points = %d, want %d", c.Points, tc.points)
			}
			if !strings.Contains(c.Explanation, tc.wantText) {
				t.Errorf("Explanation %q should mention %q", c.Explanation, tc.wantText)
			}
		})
	}
}

func TestHighAmountBoundary(t *testing.T) {
	ev := newTestEvaluator(t)

	testCases := []struct {
		amount  string
		trigger bool
	}{
		{"0", false},
		{"99999.99", false},
		{"100000", true},
		{"100000.00", true},
		{"100000.01", true},
		{"250000", true},
	}

	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			p := cleanProfile()
			p.Amount = amount(tc.amount)

			got, err := ev.Evaluate(p, AllDocuments, "")
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
			triggered := len(got) == 1 && got[0].RuleID == RuleHighAmount
			if triggered != tc.trigger {
				t.Errorf("amount %s: triggered = %v, want %v", tc.amount, triggered, tc.trigger)
			}
		})
	}
}

func TestMissingDocumentsIsFlat(t *testing.T) {
	ev := newTestEvaluator(t)

	testCases := []struct {
		name    string
		docs    DocumentChecklist
		points  int
		missing int
	}{
		{"all present", AllDocuments, 0, 0},
		{"one missing", DocumentChecklist{Identity: true, Selfie: true, ProofOfAddress: true}, 10, 1},
		{"two missing", DocumentChecklist{Identity: true, Selfie: true}, 10, 2},
		{"three missing", DocumentChecklist{Identity: true}, 10, 3},
		{"none present", DocumentChecklist{}, 10, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ev.Evaluate(cleanProfile(), tc.docs, "")
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
			if total := Total(got); total != tc.points {
				t.Errorf("Total() = %d, want %d", total, tc.points)
			}
			if n := len(tc.docs.Missing()); n != tc.missing {
				t.Errorf("Missing() = %d documents, want %d", n, tc.missing)
			}
		})
	}
}

func TestAddressMismatchRequiresOCR(t *testing.T) {
	ev := newTestEvaluator(t)

	testCases := []struct {
		name    string
		address string
		ocr     string
		trigger bool
	}{
		{"empty OCR", "12 Orchard Road Singapore", "", false},
		{"whitespace OCR", "12 Orchard Road Singapore", "   \n\t", false},
		{"matching OCR", "12 Orchard Road Singapore", "12 ORCHARD ROAD, SINGAPORE 238801", false},
		{"reordered OCR", "12 Orchard Road Singapore", "Singapore, Orchard Road 12", false},
		{"different OCR", "12 Orchard Road Singapore", "45 Baker Street London", true},
		{"partly matching OCR", "12 Orchard Road Singapore", "12 Orchard Avenue Malaysia", true},
		{"empty submitted address", "", "45 Baker Street London", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := cleanProfile()
			p.Address = tc.address

			got, err := ev.Evaluate(p, AllDocuments, tc.ocr)
			if err != nil {
				t.Fatalf("Evaluate() failed: %v", err)
			}
			triggered := len(got) == 1 && got[0].RuleID == RuleAddressMismatch
			if triggered != tc.trigger {
				t.Errorf("triggered = %v, want %v (got %v)", triggered, tc.trigger, ruleIDs(got))
			}
		})
	}
}

func TestPEPTakesPriorityOverSanctions(t *testing.T) {
	fsys := fstest.MapFS{
		"jurisdictions.yaml":   {Data: []byte("high_risk_jurisdictions:\n  - name: Iran\n")},
		"occupations.yaml":     {Data: []byte("high_risk_occupations: [Casino]\n")},
		"watchlist.yaml":       {Data: []byte("entries:\n  - {name: Jane Doe, list: Sanctions}\n  - {name: Jane Doe, list: PEP}\n")},
		"adverse_media.yaml":   {Data: []byte("entries:\n  - {name: Jane Doe, headline: Fraud inquiry}\n")},
		"wealth_keywords.yaml": {Data: []byte("keywords: [cash]\n")},
	}
	ref, err := refdata.Load(fsys)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	ev, err := NewEvaluator(ref, policy.Default())
	if err != nil {
		t.Fatalf("NewEvaluator() failed: %v", err)
	}

	p := cleanProfile()
	p.FullName = "Jane Doe"
	got, err := ev.Evaluate(p, AllDocuments, "")
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	if ids := ruleIDs(got); !reflect.DeepEqual(ids, []string{RulePEPSanctions, RuleAdverseMedia}) {
		t.Fatalf("contributions = %v, want PEP/sanctions then adverse media", ids)
	}
	if got[0].Name != "PEP Match" || got[0].Points != 40 {
		t.Errorf("dual listing should count once as PEP, got %+v", got[0])
	}
	if !strings.Contains(got[1].Explanation, "Fraud inquiry") {
		t.Errorf("adverse media explanation should carry the headline, got %q", got[1].Explanation)
	}
}

func TestEvaluateOrderFollowsCatalog(t *testing.T) {
	ev := newTestEvaluator(t)

	p := Profile{
		FullName:       "Vladimir Putin",
		Nationality:    "Russia",
		Address:        "1 Red Square Moscow",
		Occupation:     "Arms Dealer",
		Amount:         amount("500000"),
		SourceOfWealth: "offshore holdings",
	}
	got, err := ev.Evaluate(p, DocumentChecklist{}, "Somewhere else entirely")
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}

	want := []string{
		RulePEPSanctions,
		RuleHighRiskCountry,
		RuleHighAmount,
		RuleHighRiskOccupation,
		RuleUnusualWealth,
		RuleMissingDocuments,
		RuleAddressMismatch,
	}
	if ids := ruleIDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("contributions = %v, want %v", ids, want)
	}
	if total := Total(got); total != 40+20+15+10+10+10+5 {
		t.Errorf("Total() = %d, want 110", total)
	}
}

func TestEvaluateUsesPolicyPoints(t *testing.T) {
	ref, err := refdata.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() failed: %v", err)
	}
	pol := policy.Default()
	pol.Points.MissingDocuments = 7
	pol.HighAmount = decimal.NewFromInt(1000)

	ev, err := NewEvaluator(ref, pol)
	if err != nil {
		t.Fatalf("NewEvaluator() failed: %v", err)
	}

	got, err := ev.Evaluate(cleanProfile(), DocumentChecklist{}, "")
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if ids := ruleIDs(got); !reflect.DeepEqual(ids, []string{RuleHighAmount, RuleMissingDocuments}) {
		t.Fatalf("contributions = %v", ids)
	}
	if got[1].Points != 7 {
		t.Errorf("missing documents points = %d, want 7", got[1].Points)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	ev := newTestEvaluator(t)

	p := cleanProfile()
	p.FullName = "Donald Trump"
	p.SourceOfWealth = "cash and crypto"

	first, err := ev.Evaluate(p, DocumentChecklist{Identity: true}, "elsewhere")
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := ev.Evaluate(p, DocumentChecklist{Identity: true}, "elsewhere")
		if err != nil {
			t.Fatalf("Evaluate() failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, first, again)
		}
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	ev := newTestEvaluator(t)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := cleanProfile()
			if i%2 == 0 {
				p.FullName = "Xi Jinping"
			}
			got, err := ev.Evaluate(p, AllDocuments, "")
			if err != nil {
				errs <- err
				return
			}
			want := 0
			if i%2 == 0 {
				want = 40
			}
			if Total(got) != want {
				t.Errorf("goroutine %d: total = %d, want %d", i, Total(got), want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Evaluate() failed: %v", err)
	}
}
