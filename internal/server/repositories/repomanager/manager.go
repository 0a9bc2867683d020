package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/patrimonio/internal/dbx"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/categories"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/entries"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// constructor serves plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Entries(db dbx.DBTX) entries.Repository
}
