package service

import "strings"

// categoryKeywords maps description fragments onto spending categories.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"Food", []string{"food", "grocery", "restaurant", "meal", "tea", "snack"}},
	{"Transport", []string{"fuel", "transport", "uber", "taxi", "ride", "delivery"}},
	{"Bills", []string{"bill", "recharge", "internet", "electricity", "water", "phone"}},
	{"Health", []string{"medicine", "health", "hospital", "pharmacy"}},
	{"Rent", []string{"rent", "rental"}},
}

// spendingCategory derives a display category from a debit description.
func spendingCategory(description string) string {
	desc := strings.ToLower(description)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(desc, w) {
				return c.category
			}
		}
	}
	return "Spending"
}
