package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/dbx"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/categories"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/entries"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/users"
)

// memStore backs the in-memory repositories. Like the PostgreSQL ones,
// every lookup is scoped by owner and returns a copy.
type memStore struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*models.User
	categories map[string]*models.Category
	entries    map[string]*models.Entry

	// category ids passed to FindByIDForUpdate, in call order
	locked []string

	userErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		categories: map[string]*models.Category{},
		entries:    map[string]*models.Entry{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return memUsers{m.s} }
func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository    { return memCategories{m.s} }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository          { return memEntries{m.s} }

type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userErr != nil {
		return nil, r.userErr
	}
	if _, ok := r.users[u.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	u.ID = r.nextID("u")
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.UserName] = &cp
	return u, nil
}

func (r memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userErr != nil {
		return nil, r.userErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, common.ErrPrincipalNotFound
	}
	cp := *u
	return &cp, nil
}

type memCategories struct{ *memStore }

func (r memCategories) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.categories {
		if other.UserID == c.UserID && other.Name == c.Name {
			return nil, common.ErrAlreadyExists
		}
	}
	c.ID = r.nextID("c")
	c.CreatedAt = time.Now()
	cp := *c
	r.categories[c.ID] = &cp
	return c, nil
}

func (r memCategories) FindByID(ctx context.Context, ownerID, id string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok || c.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCategories) FindByIDForUpdate(ctx context.Context, ownerID, id string) (*models.Category, error) {
	c, err := r.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.locked = append(r.locked, id)
	r.mu.Unlock()
	return c, nil
}

func (r memCategories) ListByUser(ctx context.Context, ownerID string) ([]*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Category{}
	for _, c := range r.categories {
		if c.UserID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) Update(ctx context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.categories[c.ID]
	if !ok || cur.UserID != c.UserID {
		return common.ErrorNotFound
	}
	for _, other := range r.categories {
		if other.ID != c.ID && other.UserID == c.UserID && other.Name == c.Name {
			return common.ErrAlreadyExists
		}
	}
	cur.Name = c.Name
	cur.Type = c.Type
	return nil
}

func (r memCategories) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok || c.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.categories, id)
	return nil
}

type memEntries struct{ *memStore }

func (r memEntries) withName(e *models.Entry) *models.Entry {
	cp := *e
	if c, ok := r.categories[e.CategoryID]; ok {
		cp.CategoryName = c.Name
	}
	return &cp
}

func (r memEntries) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID("e")
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	r.entries[e.ID] = &cp
	return e, nil
}

func (r memEntries) FindByID(ctx context.Context, ownerID, id string) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return r.withName(e), nil
}

func (r memEntries) filter(keep func(e *models.Entry) bool) []*models.Entry {
	out := []*models.Entry{}
	for _, e := range r.entries {
		if keep(e) {
			out = append(out, r.withName(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r memEntries) List(ctx context.Context, ownerID string, kind models.EntryKind) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(e *models.Entry) bool { return e.UserID == ownerID && e.Kind == kind }), nil
}

func (r memEntries) ListByCategory(ctx context.Context, ownerID string, kind models.EntryKind, categoryID string) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(e *models.Entry) bool {
		return e.UserID == ownerID && e.Kind == kind && e.CategoryID == categoryID
	}), nil
}

func (r memEntries) Update(ctx context.Context, e *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[e.ID]
	if !ok || cur.UserID != e.UserID {
		return common.ErrorNotFound
	}
	e.UpdatedAt = time.Now()
	cur.CategoryID, cur.Description, cur.AmountCents, cur.Date, cur.UpdatedAt =
		e.CategoryID, e.Description, e.AmountCents, e.Date, e.UpdatedAt
	return nil
}

func (r memEntries) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r memEntries) DeleteByCategory(ctx context.Context, ownerID, categoryID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.entries {
		if e.UserID == ownerID && e.CategoryID == categoryID {
			delete(r.entries, id)
			n++
		}
	}
	return n, nil
}

func (r memEntries) CountByCategory(ctx context.Context, ownerID, categoryID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.UserID == ownerID && e.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r memEntries) Totals(ctx context.Context, ownerID string) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var p, x int64
	for _, e := range r.entries {
		if e.UserID != ownerID {
			continue
		}
		if e.Kind == models.KindProfit {
			p += e.AmountCents
		} else {
			x += e.AmountCents
		}
	}
	return p, x, nil
}

func (r memEntries) TotalsByCategory(ctx context.Context, ownerID string, kind models.EntryKind) ([]models.CategoryTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := map[string]int64{}
	for _, e := range r.entries {
		if e.UserID == ownerID && e.Kind == kind {
			sums[e.CategoryID] += e.AmountCents
		}
	}
	out := []models.CategoryTotal{}
	for id, total := range sums {
		c := r.categories[id]
		out = append(out, models.CategoryTotal{CategoryID: id, CategoryName: c.Name, CategoryType: c.Type, TotalCents: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents > out[j].TotalCents
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

// withoutTx runs fn directly. The in-memory repositories ignore the handle.
func withoutTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

// newMockDB returns a sqlmock connection; transactional services need it
// for Begin/Commit/Rollback.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var (
	alice = &models.User{ID: "id-alice", UserName: "alice"}
	bob   = &models.User{ID: "id-bob", UserName: "bob"}
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
