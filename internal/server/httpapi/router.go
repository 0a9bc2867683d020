package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
	"github.com/dmitrijs2005/patrimonio/internal/server/metrics"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/services"
)

// Service contracts the handlers depend on. They are implemented by the
// types in internal/server/services.
type (
	UserService interface {
		Register(ctx context.Context, username, password string) (string, *models.User, error)
		Login(ctx context.Context, username, password string) (string, error)
	}

	CategoryService interface {
		List(ctx context.Context, user *models.User) ([]*models.Category, error)
		Get(ctx context.Context, user *models.User, id string) (*models.Category, error)
		Create(ctx context.Context, user *models.User, name string, typ models.CategoryType) (*models.Category, error)
		Update(ctx context.Context, user *models.User, id, name string, typ models.CategoryType) (*models.Category, error)
		Delete(ctx context.Context, user *models.User, id string) error
	}

	EntryService interface {
		List(ctx context.Context, user *models.User, kind models.EntryKind) ([]*models.Entry, error)
		ListByCategory(ctx context.Context, user *models.User, kind models.EntryKind, categoryID string) ([]*models.Entry, error)
		Get(ctx context.Context, user *models.User, kind models.EntryKind, id string) (*models.Entry, error)
		Create(ctx context.Context, user *models.User, kind models.EntryKind, in services.EntryInput) (*models.Entry, error)
		Update(ctx context.Context, user *models.User, kind models.EntryKind, id string, in services.EntryInput) (*models.Entry, error)
		Delete(ctx context.Context, user *models.User, kind models.EntryKind, id string) error
	}

	SummaryService interface {
		Get(ctx context.Context, user *models.User) (*models.Summary, error)
	}

	ExportService interface {
		Export(ctx context.Context, user *models.User) (key, url string, err error)
	}

	Pinger interface {
		PingContext(ctx context.Context) error
	}
)

// Deps wires the router. Exports may be nil, in which case the export
// endpoint answers 503.
type Deps struct {
	Gate           *auth.Gate
	Users          UserService
	Categories     CategoryService
	Entries        EntryService
	Summary        SummaryService
	Exports        ExportService
	DB             Pinger
	Logger         logging.Logger
	AllowedOrigins []string
}

type handlers struct {
	Deps
}

func DefaultCORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the chi router with the shared middleware chain and
// all API routes.
func NewRouter(d Deps) chi.Router {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	d.Logger = d.Logger.With("module", "http_api")
	h := &handlers{Deps: d}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(DefaultCORSOptions(d.AllowedOrigins)))
	r.Use(h.authenticate)

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/me", h.me)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.listCategories)
				r.Post("/", h.createCategory)
				r.Get("/{id}", h.getCategory)
				r.Put("/{id}", h.updateCategory)
				r.Delete("/{id}", h.deleteCategory)
			})

			r.Route("/profits", h.entryRoutes(models.KindProfit))
			r.Route("/expenses", h.entryRoutes(models.KindExpense))

			r.Get("/summary", h.summary)
			r.Post("/exports", h.export)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	})

	return r
}

func (h *handlers) entryRoutes(kind models.EntryKind) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.listEntries(kind))
		r.Post("/", h.createEntry(kind))
		r.Get("/byCategory/{categoryId}", h.listEntriesByCategory(kind))
		r.Get("/{id}", h.getEntry(kind))
		r.Put("/{id}", h.updateEntry(kind))
		r.Delete("/{id}", h.deleteEntry(kind))
	}
}
