package models

// CategoryTotal is the sum of one category's entries.
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	CategoryType CategoryType
	TotalCents   int64
}

type Summary struct {
	TotalProfitsCents  int64
	TotalExpensesCents int64
	NetWorthCents      int64
	ProfitsByCategory  []CategoryTotal
	ExpensesByCategory []CategoryTotal
	AllCategories      []Category
}
