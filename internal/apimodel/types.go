package apimodel

import "time"

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Me struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type CategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type EntryRequest struct {
	Description string `json:"description"`
	Amount      Money  `json:"amount"`
	Date        Date   `json:"date"`
	CategoryID  string `json:"categoryId"`
}

type Entry struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       Money     `json:"amount"`
	Date         Date      `json:"date"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CategoryTotal struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	CategoryType string `json:"categoryType"`
	TotalAmount  Money  `json:"totalAmount"`
}

type Summary struct {
	TotalProfits       Money           `json:"totalProfits"`
	TotalExpenses      Money           `json:"totalExpenses"`
	NetWorth           Money           `json:"netWorth"`
	ProfitsByCategory  []CategoryTotal `json:"profitsByCategory"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
	AllCategories      []Category      `json:"allCategories"`
}

type ExportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
