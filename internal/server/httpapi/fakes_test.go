package httpapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/services"
)

type fakeDirectory struct {
	users map[string]*models.User
	calls atomic.Int32
}

func (d *fakeDirectory) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	d.calls.Add(1)
	u, ok := d.users[username]
	if !ok {
		return nil, common.ErrPrincipalNotFound
	}
	return u, nil
}

type fakeUsers struct {
	tokens    *auth.TokenService
	dir       *fakeDirectory
	passwords map[string]string
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (string, *models.User, error) {
	if len(username) < 3 {
		return "", nil, fmt.Errorf("%w: username too short", common.ErrValidation)
	}
	if _, ok := f.dir.users[username]; ok {
		return "", nil, common.ErrAlreadyExists
	}
	u := &models.User{ID: "id-" + username, UserName: username}
	f.dir.users[username] = u
	f.passwords[username] = password
	token, err := f.tokens.Issue(u)
	return token, u, err
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (string, error) {
	u, ok := f.dir.users[username]
	if !ok || f.passwords[username] != password {
		return "", common.ErrorUnauthorized
	}
	return f.tokens.Issue(u)
}

// fakeCategories looks categories up by id only and leaves the ownership
// decision to auth.LoadOwned.
type fakeCategories struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*models.Category
}

func (f *fakeCategories) find(ctx context.Context, ownerID, id string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) List(ctx context.Context, user *models.User) ([]*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Category{}
	for _, c := range f.byID {
		if c.UserID == user.ID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategories) Get(ctx context.Context, user *models.User, id string) (*models.Category, error) {
	return auth.LoadOwned(ctx, user, id, f.find)
}

func (f *fakeCategories) Create(ctx context.Context, user *models.User, name string, typ models.CategoryType) (*models.Category, error) {
	if name == "" || !typ.Valid() {
		return nil, fmt.Errorf("%w: bad category", common.ErrValidation)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c := &models.Category{ID: fmt.Sprintf("cat-%d", f.seq), UserID: user.ID, Name: name, Type: typ, CreatedAt: time.Now()}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCategories) Update(ctx context.Context, user *models.User, id, name string, typ models.CategoryType) (*models.Category, error) {
	c, err := auth.LoadOwned(ctx, user, id, f.find)
	if err != nil {
		return nil, err
	}
	c.Name, c.Type = name, typ
	f.mu.Lock()
	f.byID[id] = c
	f.mu.Unlock()
	return c, nil
}

func (f *fakeCategories) Delete(ctx context.Context, user *models.User, id string) error {
	if _, err := auth.LoadOwned(ctx, user, id, f.find); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.byID, id)
	f.mu.Unlock()
	return nil
}

type fakeEntries struct {
	lastKind  models.EntryKind
	lastInput services.EntryInput
	stored    []*models.Entry
}

func (f *fakeEntries) List(ctx context.Context, user *models.User, kind models.EntryKind) ([]*models.Entry, error) {
	f.lastKind = kind
	return f.stored, nil
}

func (f *fakeEntries) ListByCategory(ctx context.Context, user *models.User, kind models.EntryKind, categoryID string) ([]*models.Entry, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeEntries) Get(ctx context.Context, user *models.User, kind models.EntryKind, id string) (*models.Entry, error) {
	for _, e := range f.stored {
		if e.ID == id && e.Kind == kind {
			return auth.LoadOwned(ctx, user, id, func(context.Context, string, string) (*models.Entry, error) { return e, nil })
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEntries) Create(ctx context.Context, user *models.User, kind models.EntryKind, in services.EntryInput) (*models.Entry, error) {
	f.lastKind, f.lastInput = kind, in
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}
	e := &models.Entry{ID: "e-1", UserID: user.ID, Kind: kind, CategoryID: in.CategoryID, Description: in.Description, AmountCents: in.AmountCents, Date: in.Date}
	f.stored = append(f.stored, e)
	return e, nil
}

func (f *fakeEntries) Update(ctx context.Context, user *models.User, kind models.EntryKind, id string, in services.EntryInput) (*models.Entry, error) {
	e, err := f.Get(ctx, user, kind, id)
	if err != nil {
		return nil, err
	}
	e.Description, e.AmountCents = in.Description, in.AmountCents
	return e, nil
}

func (f *fakeEntries) Delete(ctx context.Context, user *models.User, kind models.EntryKind, id string) error {
	_, err := f.Get(ctx, user, kind, id)
	return err
}

type fakeSummary struct{}

func (fakeSummary) Get(ctx context.Context, user *models.User) (*models.Summary, error) {
	return &models.Summary{
		TotalProfitsCents:  100000,
		TotalExpensesCents: 2550,
		NetWorthCents:      97450,
		ProfitsByCategory: []models.CategoryTotal{
			{CategoryID: "c1", CategoryName: "Salary", CategoryType: models.CategoryProfit, TotalCents: 100000},
		},
		ExpensesByCategory: []models.CategoryTotal{},
		AllCategories:      []models.Category{{ID: "c1", UserID: user.ID, Name: "Salary", Type: models.CategoryProfit}},
	}, nil
}

type fakeExports struct{ err error }

func (f fakeExports) Export(ctx context.Context, user *models.User) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "exports/" + user.ID + "/x.csv", "https://s3.test/exports/x.csv", nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testEnv struct {
	deps    Deps
	tokens  *auth.TokenService
	dir     *fakeDirectory
	entries *fakeEntries
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte("http-test-secret"), time.Hour)
	require.NoError(t, err)

	dir := &fakeDirectory{users: map[string]*models.User{}}
	entries := &fakeEntries{}

	return &testEnv{
		tokens:  tokens,
		dir:     dir,
		entries: entries,
		deps: Deps{
			Gate:       auth.NewGate(tokens, dir, auth.DefaultHTTPPublicPrefixes, logging.Nop{}),
			Users:      &fakeUsers{tokens: tokens, dir: dir, passwords: map[string]string{}},
			Categories: &fakeCategories{byID: map[string]*models.Category{}},
			Entries:    entries,
			Summary:    fakeSummary{},
			DB:         fakePinger{},
			Logger:     logging.Nop{},
		},
	}
}

var errBoom = errors.New("boom")
