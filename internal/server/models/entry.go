package models

import "time"

// EntryKind splits entries into incomes and outgoings. Both live in one table.
type EntryKind string

const (
	KindProfit  EntryKind = "profit"
	KindExpense EntryKind = "expense"
)

func (k EntryKind) Valid() bool {
	return k == KindProfit || k == KindExpense
}

// CategoryType is the category type an entry of this kind must be filed under.
func (k EntryKind) CategoryType() CategoryType {
	if k == KindProfit {
		return CategoryProfit
	}
	return CategoryExpense
}

type Entry struct {
	ID          string
	UserID      string
	CategoryID  string
	Kind        EntryKind
	Description string
	AmountCents int64
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// CategoryName is filled by list queries that join categories.
	CategoryName string
}

// OwnerID returns the id of the user the entry belongs to.
func (e *Entry) OwnerID() string {
	if e == nil {
		return ""
	}
	return e.UserID
}
