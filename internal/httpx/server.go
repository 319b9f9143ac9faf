package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	// no global timeout middleware: the SSE stream is long-lived, every
	// other handler sets its own per-request deadline
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the domain error taxonomy onto HTTP codes. Validation and
// state errors carry their reason; anything else is a generic failure the
// caller may retry whole.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case orders.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrUnknownStatus), errors.Is(err, orders.ErrTerminalStatus):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, orders.ErrProductNotFound), errors.Is(err, orders.ErrCartNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// userID reads the identity the auth layer in front of us stamped on the
// request. An empty value fails validation downstream.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
