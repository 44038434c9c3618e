package engine

import "strings"

// Source of wealth categories reported alongside a result. They are for
// display only and never affect the score.
const (
	WealthEmployment = "Employment Income"
	WealthBusiness   = "Business Profits"
	WealthInvestment = "Investment Returns"
	WealthInherited  = "Inheritance"
	WealthAssetSale  = "Asset Sale"
	WealthGift       = "Gift"
	WealthPension    = "Pension/Retirement"
	WealthUndetected = "Undetected"
	WealthOther      = "Other"
)

var wealthCategories = []struct {
	category string
	terms    []string
}{
	{WealthEmployment, []string{"salary", "employment", "payslip", "wage"}},
	{WealthBusiness, []string{"business", "profit", "company"}},
	{WealthInvestment, []string{"investment", "dividend", "capital gain"}},
	{WealthInherited, []string{"inheritance", "estate", "bequest"}},
	{WealthAssetSale, []string{"property", "real estate", "sale of asset"}},
	{WealthGift, []string{"gift", "donation"}},
	{WealthPension, []string{"pension", "retirement"}},
}

// CategorizeSourceOfWealth assigns a narrative to the first category whose
// terms it contains.
func CategorizeSourceOfWealth(narrative string) string {
	text := strings.ToLower(narrative)
	for _, c := range wealthCategories {
		for _, term := range c.terms {
			if strings.Contains(text, term) {
				return c.category
			}
		}
	}
	if strings.TrimSpace(text) == "" {
		return WealthUndetected
	}
	return WealthOther
}
