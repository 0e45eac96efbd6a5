package models

import (
	"strings"
	"time"
)

// Category is one of the fixed expense categories.
type Category string

// The fixed category set. Declaration order doubles as the stable ordering
// used to break aggregation ties.
const (
	Food          Category = "Food"
	Entertainment Category = "Entertainment"
	Utilities     Category = "Utilities"
	Travel        Category = "Travel"
	Shopping      Category = "Shopping"
	Housing       Category = "Housing"
	Healthcare    Category = "Healthcare"
	Other         Category = "Other"
)

// Categories lists the fixed set in stable order.
var Categories = []Category{
	Food,
	Entertainment,
	Utilities,
	Travel,
	Shopping,
	Housing,
	Healthcare,
	Other,
}

// ValidCategory reports whether c belongs to the fixed set.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DateLayout is the civil date format used throughout: "2025-01-31".
const DateLayout = "2006-01-02"

// ParseDate parses a civil date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid("date", "must be YYYY-MM-DD")
	}
	return d, nil
}

// ExpenseRecord is one persisted expense. ID and both timestamps are
// assigned by whichever backing store confirmed the write; OwnerID always
// equals the active identity's id.
type ExpenseRecord struct {
	ID          string
	OwnerID     string
	Title       string
	Amount      Money
	Category    Category
	Date        time.Time
	Description string
	CreatedAt   int64
	UpdatedAt   int64
}

// ExpenseInput is a draft for a new record. Amount arrives as the raw
// string the user typed; it is parsed and validated here, never downstream.
type ExpenseInput struct {
	Title       string
	Amount      string
	Category    Category
	Date        string
	Description string
}

// Validate checks the draft and returns the parsed amount and date.
func (in ExpenseInput) Validate() (Money, time.Time, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Money{}, time.Time{}, invalid("title", "empty")
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Money{}, time.Time{}, err
	}
	if !ValidCategory(in.Category) {
		return Money{}, time.Time{}, invalid("category", "unknown category")
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Money{}, time.Time{}, err
	}
	return amount, date, nil
}

// ExpensePatch is a partial update; nil fields are left unchanged.
type ExpensePatch struct {
	Title       *string
	Amount      *string
	Category    *Category
	Date        *string
	Description *string
}

// Apply validates the patch and returns a copy of rec with the patched
// fields merged in. The original record is not modified.
func (p ExpensePatch) Apply(rec ExpenseRecord) (ExpenseRecord, error) {
	merged := rec
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return ExpenseRecord{}, invalid("title", "empty")
		}
		merged.Title = *p.Title
	}
	if p.Amount != nil {
		amount, err := ParseAmount(*p.Amount)
		if err != nil {
			return ExpenseRecord{}, err
		}
		merged.Amount = amount
	}
	if p.Category != nil {
		if !ValidCategory(*p.Category) {
			return ExpenseRecord{}, invalid("category", "unknown category")
		}
		merged.Category = *p.Category
	}
	if p.Date != nil {
		date, err := ParseDate(*p.Date)
		if err != nil {
			return ExpenseRecord{}, err
		}
		merged.Date = date
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	return merged, nil
}
