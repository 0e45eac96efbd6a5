// Package summary computes aggregate views over an expense collection.
// Every function is a pure fold over the records it is given: no caching,
// no side effects, so an aggregate can never go stale relative to the
// collection it was derived from.
package summary

import (
	"expensetrack/internal/models"
)

// NoCategory is returned by TopCategory for an empty collection.
const NoCategory = models.Category("None")

// CategoryTotal pairs a category with its aggregated amount.
type CategoryTotal struct {
	Category models.Category
	Amount   models.Money
}

// Total sums every record's amount. Cents arithmetic makes the result
// exact and independent of record order.
func Total(records []models.ExpenseRecord) models.Money {
	var total models.Money
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}

// TotalsByCategory sums amounts per category. Only categories present in
// at least one record appear in the result; there are no zero entries.
func TotalsByCategory(records []models.ExpenseRecord) map[models.Category]models.Money {
	totals := make(map[models.Category]models.Money)
	for _, rec := range records {
		totals[rec.Category] = totals[rec.Category].Add(rec.Amount)
	}
	return totals
}

// TopCategory returns the category with the largest total. Ties go to the
// category that comes first in the fixed category ordering. An empty
// collection yields NoCategory with a zero amount.
func TopCategory(records []models.ExpenseRecord) CategoryTotal {
	totals := TotalsByCategory(records)
	if len(totals) == 0 {
		return CategoryTotal{Category: NoCategory}
	}
	top := CategoryTotal{Category: NoCategory}
	found := false
	for _, category := range models.Categories {
		amount, ok := totals[category]
		if !ok {
			continue
		}
		if !found || amount.Cents > top.Amount.Cents {
			top = CategoryTotal{Category: category, Amount: amount}
			found = true
		}
	}
	return top
}
