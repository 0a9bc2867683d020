package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
	"github.com/dmitrijs2005/patrimonio/internal/client/config"
	"github.com/dmitrijs2005/patrimonio/internal/common"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// fakeAPI is a minimal in-memory patrimonio server.
type fakeAPI struct {
	mu         sync.Mutex
	passwords  map[string]string
	categories []apimodel.Category
	entries    map[string][]apimodel.Entry
	lastEntry  apimodel.EntryRequest
	lastAuth   string
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	f := &fakeAPI{passwords: map[string]string{}, entries: map[string][]apimodel.Entry{}}
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	return f, ts.URL
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/register", "POST /api/auth/login":
		var c apimodel.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if strings.HasSuffix(r.URL.Path, "register") {
			f.passwords[c.Username] = c.Password
		} else if p, ok := f.passwords[c.Username]; !ok || p != c.Password {
			reply(http.StatusUnauthorized, apimodel.ErrorResponse{Error: "unauthorized"})
			return
		}
		reply(http.StatusOK, apimodel.TokenResponse{Token: "token-" + c.Username})
		return
	}

	f.lastAuth = r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(f.lastAuth, "Bearer token-") {
		reply(http.StatusUnauthorized, apimodel.ErrorResponse{Error: "unauthorized"})
		return
	}
	user := strings.TrimPrefix(f.lastAuth, "Bearer token-")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/me":
		reply(http.StatusOK, apimodel.Me{ID: "id-" + user, Username: user})
	case r.Method == http.MethodGet && r.URL.Path == "/api/categories":
		reply(http.StatusOK, f.categories)
	case r.Method == http.MethodPost && r.URL.Path == "/api/categories":
		var req apimodel.CategoryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		c := apimodel.Category{ID: "cat-1", Name: req.Name, Type: req.Type}
		f.categories = append(f.categories, c)
		reply(http.StatusCreated, c)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/categories/"):
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && (r.URL.Path == "/api/expenses" || r.URL.Path == "/api/profits"):
		var req apimodel.EntryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastEntry = req
		e := apimodel.Entry{ID: "e-1", Description: req.Description, Amount: req.Amount, Date: req.Date, CategoryID: req.CategoryID, CategoryName: "Food"}
		f.entries[r.URL.Path] = append(f.entries[r.URL.Path], e)
		reply(http.StatusCreated, e)
	case r.Method == http.MethodGet && (r.URL.Path == "/api/expenses" || r.URL.Path == "/api/profits"):
		reply(http.StatusOK, f.entries[r.URL.Path])
	case r.Method == http.MethodGet && r.URL.Path == "/api/summary":
		reply(http.StatusOK, apimodel.Summary{
			TotalProfits:      100000,
			TotalExpenses:     150000,
			NetWorth:          -50000,
			ProfitsByCategory: []apimodel.CategoryTotal{{CategoryName: "Salary", TotalAmount: 100000}},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/api/exports":
		reply(http.StatusCreated, apimodel.ExportResponse{Key: "exports/k.csv", URL: "https://s3.test/k.csv"})
	default:
		reply(http.StatusNotFound, apimodel.ErrorResponse{Error: "not found"})
	}
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
}

// run executes the CLI against serverURL with a private HOME.
func run(t *testing.T, serverURL, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(strings.NewReader(stdin), &out)
	root := app.RootCommand()
	root.SetArgs(append([]string{"--server", serverURL}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvServerURL, "")
	t.Setenv(config.EnvTokenDir, "")
	return home
}

func TestRegisterLoginLogout(t *testing.T) {
	home := isolateHome(t)
	_, url := newFakeAPI(t)
	stubPassword(t, "secret1")

	out, err := run(t, url, "alice\n", "register")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered and logged in as alice")

	tokenPath := filepath.Join(home, ".patrimonio", "token")
	b, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "token-alice", string(b))
	fi, err := os.Stat(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	out, err = run(t, url, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")

	out, err = run(t, url, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = os.Stat(tokenPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = run(t, url, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	out, err = run(t, url, "", "login", "--username", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")
}

func TestLogin_WrongPassword(t *testing.T) {
	isolateHome(t)
	api, url := newFakeAPI(t)
	api.passwords["alice"] = "secret1"
	stubPassword(t, "nope")

	_, err := run(t, url, "", "login", "-u", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = run(t, url, "", "summary")
	assert.ErrorIs(t, err, errNotLoggedIn, "no token must be saved after a failed login")
}

func TestCategoriesAndEntries(t *testing.T) {
	isolateHome(t)
	api, url := newFakeAPI(t)
	stubPassword(t, "secret1")

	origToday := today
	t.Cleanup(func() { today = origToday })
	today = func() time.Time { return time.Date(2024, 11, 3, 15, 0, 0, 0, time.UTC) }

	_, err := run(t, url, "", "register", "-u", "alice")
	require.NoError(t, err)

	out, err := run(t, url, "", "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No categories yet")

	out, err = run(t, url, "", "categories", "add", "Food", "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, `Created EXPENSE category "Food"`)

	out, err = run(t, url, "", "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "cat-1")

	out, err = run(t, url, "", "entries", "add", "--kind", "expense", "--amount", "12,50", "-d", "Lunch", "--category", "cat-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded expense 12.50 on 2024-11-03")
	assert.Equal(t, apimodel.Money(1250), api.lastEntry.Amount)
	assert.Equal(t, "Bearer token-alice", api.lastAuth)

	out, err = run(t, url, "", "entries", "list", "--kind", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunch")
	assert.Contains(t, out, "12.50")

	_, err = run(t, url, "", "entries", "add", "--amount", "abc", "-d", "x", "--category", "cat-1")
	assert.Error(t, err)

	_, err = run(t, url, "", "entries", "add", "--amount", "1", "-d", "x", "--category", "cat-1", "--date", "03/11/2024")
	assert.Error(t, err)

	_, err = run(t, url, "", "entries", "list", "--kind", "loan")
	assert.ErrorIs(t, err, common.ErrValidation)

	out, err = run(t, url, "", "categories", "delete", "cat-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted category cat-1")
}

func TestSummary(t *testing.T) {
	isolateHome(t)
	_, url := newFakeAPI(t)
	stubPassword(t, "secret1")

	_, err := run(t, url, "", "register", "-u", "alice")
	require.NoError(t, err)

	out, err := run(t, url, "", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "-500.00")
	assert.Contains(t, out, "Profits by category")
	assert.Contains(t, out, "Salary")
	assert.NotContains(t, out, "Expenses by category")
}

func TestExport(t *testing.T) {
	isolateHome(t)
	_, url := newFakeAPI(t)
	stubPassword(t, "secret1")

	_, err := run(t, url, "", "register", "-u", "alice")
	require.NoError(t, err)

	out, err := run(t, url, "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "exports/k.csv")
	assert.Contains(t, out, "https://s3.test/k.csv")

	origDownload := download
	t.Cleanup(func() { download = origDownload })
	var gotURL string
	download = func(ctx context.Context, u string, w io.Writer) (int64, error) {
		gotURL = u
		n, err := io.WriteString(w, "date,kind\n")
		return int64(n), err
	}

	dst := filepath.Join(t.TempDir(), "out.csv")
	out, err = run(t, url, "", "export", "-o", dst)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/k.csv", gotURL)
	assert.Contains(t, out, "Saved 10 bytes")
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "date,kind\n", string(b))

	download = func(ctx context.Context, u string, w io.Writer) (int64, error) {
		return 0, errors.New("403 Forbidden")
	}
	failed := filepath.Join(t.TempDir(), "failed.csv")
	_, err = run(t, url, "", "export", "-o", failed)
	require.Error(t, err)
	_, statErr := os.Stat(failed)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "partial file must be removed")
}

func TestServerUnavailable(t *testing.T) {
	isolateHome(t)
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	stubPassword(t, "secret1")

	_, err := run(t, url, "", "login", "-u", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot reach the server")
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	app := NewApp(strings.NewReader("  bob  \n"), &out)

	got, err := GetSimpleText(app.reader, "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "bob", got)
	assert.Equal(t, "Username: ", out.String())

	app = NewApp(strings.NewReader("partial"), &out)
	got, err = GetSimpleText(app.reader, "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)

	app = NewApp(strings.NewReader(""), &out)
	_, err = GetSimpleText(app.reader, "Username", &out)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTokenStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := NewTokenStore(".patrimonio")
	require.NoError(t, err)

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save("abc"))
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	root := NewApp(strings.NewReader(""), &out).RootCommand()
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Build version:")
}
