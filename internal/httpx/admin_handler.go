package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/redisx"
)

// AdminHandler is the staff surface: paginated listing, single fetch and
// the status transition. It is mounted behind the staff auth layer.
type AdminHandler struct {
	Service *orders.Service
	Redis   *redis.Client
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Get("/admin/orders", h.list)
	r.Get("/admin/orders/{id}", h.get)
	r.Patch("/admin/orders/{id}/status", h.updateStatus)
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.ListOrders(ctx, orders.ListFilter{
		Search:   q.Get("q"),
		Status:   orders.Status(q.Get("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}

	// keep the customer-facing status cache current
	if h.Redis != nil {
		b, _ := json.Marshal(statusView(o))
		key := fmt.Sprintf(redisx.KeyOrderStatus, o.Number)
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}

	writeJSON(w, http.StatusOK, o)
}
