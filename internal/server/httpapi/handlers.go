package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

// currentUser returns the identity attached by the gate. Handlers behind
// requireUser always have one.
func currentUser(r *http.Request) *models.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			h.Logger.Warn(r.Context(), "database not ready", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req apimodel.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, _, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apimodel.TokenResponse{Token: token})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req apimodel.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apimodel.TokenResponse{Token: token})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	writeJSON(w, http.StatusOK, apimodel.Me{ID: u.ID, Username: u.UserName})
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Categories.List(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategories(cs))
}

func (h *handlers) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.Categories.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategory(c))
}

func (h *handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var req apimodel.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.Categories.Create(r.Context(), currentUser(r), req.Name, models.CategoryType(req.Type))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategory(c))
}

func (h *handlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req apimodel.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.Categories.Update(r.Context(), currentUser(r), chi.URLParam(r, "id"), req.Name, models.CategoryType(req.Type))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategory(c))
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Categories.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listEntries(kind models.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		es, err := h.Entries.List(r.Context(), currentUser(r), kind)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntries(es))
	}
}

func (h *handlers) listEntriesByCategory(kind models.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		es, err := h.Entries.ListByCategory(r.Context(), currentUser(r), kind, chi.URLParam(r, "categoryId"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntries(es))
	}
}

func (h *handlers) getEntry(kind models.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := h.Entries.Get(r.Context(), currentUser(r), kind, chi.URLParam(r, "id"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntry(e))
	}
}

func (h *handlers) createEntry(kind models.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.EntryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}

		e, err := h.Entries.Create(r.Context(), currentUser(r), kind, fromEntryRequest(req))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEntry(e))
	}
}

func (h *handlers) updateEntry(kind models.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.EntryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}

		e, err := h.Entries.Update(r.Context(), currentUser(r), kind, chi.URLParam(r, "id"), fromEntryRequest(req))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntry(e))
	}
}

func (h *handlers) deleteEntry(kind models.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Entries.Delete(r.Context(), currentUser(r), kind, chi.URLParam(r, "id")); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Summary.Get(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(s))
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	if h.Exports == nil {
		h.writeError(w, r, common.ErrExportsDisabled)
		return
	}

	key, url, err := h.Exports.Export(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, apimodel.ExportResponse{Key: key, URL: url})
}
