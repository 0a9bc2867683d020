package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/repomanager"
)

// SummaryService aggregates a user's finances.
type SummaryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSummaryService(db *sql.DB, m repomanager.RepositoryManager) *SummaryService {
	return &SummaryService{db: db, repomanager: m}
}

// Get returns totals, net worth (profits minus expenses), per-category
// breakdowns and the full category list.
func (s *SummaryService) Get(ctx context.Context, user *models.User) (*models.Summary, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}

	entries := s.repomanager.Entries(s.db)

	profits, expenses, err := entries.Totals(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	byProfit, err := entries.TotalsByCategory(ctx, user.ID, models.KindProfit)
	if err != nil {
		return nil, err
	}
	byExpense, err := entries.TotalsByCategory(ctx, user.ID, models.KindExpense)
	if err != nil {
		return nil, err
	}
	cats, err := s.repomanager.Categories(s.db).ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	all := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		all = append(all, *c)
	}

	return &models.Summary{
		TotalProfitsCents:  profits,
		TotalExpensesCents: expenses,
		NetWorthCents:      profits - expenses,
		ProfitsByCategory:  byProfit,
		ExpensesByCategory: byExpense,
		AllCategories:      all,
	}, nil
}
