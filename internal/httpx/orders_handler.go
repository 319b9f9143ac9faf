package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/orders"
	"github.com/burgerhouseweligama-hub/burger-house-sub000/internal/redisx"
)

// OrdersHandler is the customer-facing surface: checkout, own history and
// status lookup by order number.
type OrdersHandler struct {
	Service *orders.Service
	Redis   *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders", h.history)
	r.Get("/orders/{number}", h.getOrder)
}

type checkoutReq struct {
	CustomerName  string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	PostalCode    string   `json:"postal_code"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
	PaymentMethod string   `json:"payment_method"`
}

type checkoutResp struct {
	OrderNumber string        `json:"order_number"`
	TotalCents  int           `json:"total_cents"`
	Status      orders.Status `json:"status"`
	ItemCount   int           `json:"item_count"`
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Checkout(ctx, orders.CheckoutRequest{
		UserID:        userID(r),
		CustomerName:  req.CustomerName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Lat:           req.Lat,
		Lng:           req.Lng,
		PaymentMethod: orders.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	// warm the status cache so the first tracking poll skips the DB
	h.cacheStatus(ctx, o)

	writeJSON(w, http.StatusCreated, checkoutResp{
		OrderNumber: o.Number,
		TotalCents:  o.TotalCents,
		Status:      o.Status,
		ItemCount:   len(o.Lines),
	})
}

func (h *OrdersHandler) history(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.History(ctx, userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// read-through status cache
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, number)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Service.GetOrderByNumber(ctx, number)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, statusView(o))
}

func statusView(o *orders.Order) map[string]any {
	return map[string]any{
		"order_number": o.Number,
		"status":       o.Status,
		"status_label": o.Status.Label(),
		"total_cents":  o.TotalCents,
		"updated_at":   o.UpdatedAt,
	}
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	if h.Redis == nil {
		return
	}
	b, _ := json.Marshal(statusView(o))
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.Number)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
