package httpapi

import (
	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/services"
)

func toCategory(c *models.Category) apimodel.Category {
	return apimodel.Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt,
	}
}

func toCategories(cs []*models.Category) []apimodel.Category {
	out := make([]apimodel.Category, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCategory(c))
	}
	return out
}

func toEntry(e *models.Entry) apimodel.Entry {
	return apimodel.Entry{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       apimodel.Money(e.AmountCents),
		Date:         apimodel.NewDate(e.Date),
		CategoryID:   e.CategoryID,
		CategoryName: e.CategoryName,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toEntries(es []*models.Entry) []apimodel.Entry {
	out := make([]apimodel.Entry, 0, len(es))
	for _, e := range es {
		out = append(out, toEntry(e))
	}
	return out
}

func toCategoryTotals(ts []models.CategoryTotal) []apimodel.CategoryTotal {
	out := make([]apimodel.CategoryTotal, 0, len(ts))
	for _, t := range ts {
		out = append(out, apimodel.CategoryTotal{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			CategoryType: string(t.CategoryType),
			TotalAmount:  apimodel.Money(t.TotalCents),
		})
	}
	return out
}

func toSummary(s *models.Summary) apimodel.Summary {
	all := make([]apimodel.Category, 0, len(s.AllCategories))
	for i := range s.AllCategories {
		all = append(all, toCategory(&s.AllCategories[i]))
	}
	return apimodel.Summary{
		TotalProfits:       apimodel.Money(s.TotalProfitsCents),
		TotalExpenses:      apimodel.Money(s.TotalExpensesCents),
		NetWorth:           apimodel.Money(s.NetWorthCents),
		ProfitsByCategory:  toCategoryTotals(s.ProfitsByCategory),
		ExpensesByCategory: toCategoryTotals(s.ExpensesByCategory),
		AllCategories:      all,
	}
}

func fromEntryRequest(req apimodel.EntryRequest) services.EntryInput {
	return services.EntryInput{
		Description: req.Description,
		AmountCents: int64(req.Amount),
		Date:        req.Date.Time,
		CategoryID:  req.CategoryID,
	}
}
