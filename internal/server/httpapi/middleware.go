package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
)

// authenticate runs the gate for every non-public request and stores the
// resolved user in the request context. It never rejects.
func (h *handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Gate.ShouldBypass(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		ctx := h.Gate.Attach(r.Context(), r.Header.Get(common.AuthorizationHeaderName))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser answers 401 when the request carries no identity. The
// response is the same whatever the reason was.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody(common.ErrorUnauthorized.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.Logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
