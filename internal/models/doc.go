// Package models defines the core domain types for the expense tracker.
//
// # Models
//
//   - Identity: the active user context (anonymous, authenticated, guest)
//   - ExpenseRecord: a single persisted expense owned by an identity
//   - ExpenseInput / ExpensePatch: validated drafts for create and update
//   - Money: amounts as integer cents to avoid floating-point drift
//
// # Design Principles
//
//  1. **Store-assigned identity**: record IDs and timestamps come from the
//     backing store, never from the caller.
//  2. **Cents, not floats**: all arithmetic happens on int64 cents; floats
//     appear only at parse/format boundaries.
//  3. **Validation before persistence**: drafts are fully validated in this
//     package so malformed input never reaches a backing store.
//
// The package also declares the shared error taxonomy (see errors.go) that
// every store implementation maps its failures onto.
package models
