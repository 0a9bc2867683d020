package models

import "time"

type CategoryType string

const (
	CategoryProfit  CategoryType = "PROFIT"
	CategoryExpense CategoryType = "EXPENSE"
)

func (t CategoryType) Valid() bool {
	return t == CategoryProfit || t == CategoryExpense
}

type Category struct {
	ID        string
	UserID    string
	Name      string
	Type      CategoryType
	CreatedAt time.Time
}

// OwnerID returns the id of the user the category belongs to.
func (c *Category) OwnerID() string {
	if c == nil {
		return ""
	}
	return c.UserID
}
