package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
)

// MenuHandler exposes the read-only menu listing; catalog editing lives in
// the storefront CRUD, not here.
type MenuHandler struct {
	Catalog *orders.CatalogRepo
}

func (h *MenuHandler) Register(r *chi.Mux) {
	r.Get("/menu", h.list)
}

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
