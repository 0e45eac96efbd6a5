package summary

import (
	"testing"

	"expensetrack/internal/models"
)

func rec(title string, cents int64, category models.Category) models.ExpenseRecord {
	return models.ExpenseRecord{Title: title, Amount: models.Money{Cents: cents}, Category: category}
}

func TestTotal(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		if got := Total(nil); got.Cents != 0 {
			t.Errorf("Total(nil) = %s, want 0.00", got)
		}
	})

	t.Run("single coffee", func(t *testing.T) {
		records := []models.ExpenseRecord{rec("Coffee", 350, models.Food)}
		if got := Total(records); got.String() != "3.50" {
			t.Errorf("Total = %s, want 3.50", got)
		}
	})

	t.Run("stable under reordering", func(t *testing.T) {
		forward := []models.ExpenseRecord{
			rec("a", 1000, models.Food),
			rec("b", 500, models.Food),
			rec("c", 2000, models.Travel),
		}
		backward := []models.ExpenseRecord{forward[2], forward[0], forward[1]}
		if Total(forward) != Total(backward) {
			t.Errorf("Total(forward) = %s, Total(backward) = %s", Total(forward), Total(backward))
		}
	})
}

func TestTotalsByCategory(t *testing.T) {
	records := []models.ExpenseRecord{
		rec("lunch", 1000, models.Food),
		rec("dinner", 500, models.Food),
		rec("flight", 2000, models.Travel),
	}

	totals := TotalsByCategory(records)

	if len(totals) != 2 {
		t.Fatalf("got %d categories, want 2: %v", len(totals), totals)
	}
	if totals[models.Food].Cents != 1500 {
		t.Errorf("Food total = %d, want 1500", totals[models.Food].Cents)
	}
	if totals[models.Travel].Cents != 2000 {
		t.Errorf("Travel total = %d, want 2000", totals[models.Travel].Cents)
	}
	if _, present := totals[models.Housing]; present {
		t.Error("Housing present with no records, want omitted")
	}

	// The category totals must partition the overall total.
	var sum models.Money
	for _, amount := range totals {
		sum = sum.Add(amount)
	}
	if sum != Total(records) {
		t.Errorf("category sum %s != total %s", sum, Total(records))
	}
}

func TestTotalsByCategoryCoffeeScenario(t *testing.T) {
	records := []models.ExpenseRecord{rec("Coffee", 350, models.Food)}
	totals := TotalsByCategory(records)
	if len(totals) != 1 || totals[models.Food].String() != "3.50" {
		t.Errorf("totals = %v, want {Food: 3.50}", totals)
	}
}

func TestTopCategory(t *testing.T) {
	t.Run("largest total wins", func(t *testing.T) {
		records := []models.ExpenseRecord{
			rec("lunch", 1000, models.Food),
			rec("dinner", 500, models.Food),
			rec("flight", 2000, models.Travel),
		}
		top := TopCategory(records)
		if top.Category != models.Travel {
			t.Errorf("top category = %s, want Travel", top.Category)
		}
		if top.Amount.String() != "20.00" {
			t.Errorf("top amount = %s, want 20.00", top.Amount)
		}
	})

	t.Run("tie goes to earlier category in fixed order", func(t *testing.T) {
		records := []models.ExpenseRecord{
			rec("flight", 1000, models.Travel),
			rec("lunch", 1000, models.Food),
		}
		if top := TopCategory(records); top.Category != models.Food {
			t.Errorf("top category = %s, want Food (earlier in fixed order)", top.Category)
		}
	})

	t.Run("empty collection yields sentinel", func(t *testing.T) {
		top := TopCategory(nil)
		if top.Category != NoCategory || top.Amount.Cents != 0 {
			t.Errorf("top = %+v, want NoCategory with zero amount", top)
		}
	})
}
