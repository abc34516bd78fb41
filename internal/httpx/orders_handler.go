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

	"github.com/fadhilr/go-shop-orders/internal/redisx"
	"github.com/fadhilr/go-shop-orders/internal/shop"
)

type OrdersHandler struct {
	Coordinator *shop.Coordinator
	Orders      shop.OrderRepo
	Redis       *redis.Client
}

type CancelOrderReq struct {
	UserID int64 `json:"user_id"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch shop.KindOf(err) {
	case shop.KindNotFound:
		code = http.StatusNotFound
	case shop.KindBadRequest:
		code = http.StatusBadRequest
	case shop.KindForbidden:
		code = http.StatusForbidden
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req shop.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	agg, err := h.Coordinator.Create(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, agg)
	writeJSON(w, http.StatusCreated, agg)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req CancelOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	agg, err := h.Coordinator.Cancel(ctx, req.UserID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, agg)
	writeJSON(w, http.StatusOK, agg)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	agg, err := h.Orders.Aggregate(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// Cache first, DB on miss.
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	agg, err := h.Orders.Aggregate(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	status := shop.PaymentStatus("")
	if agg.Payment != nil {
		status = agg.Payment.Status
	}
	b, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	var status *shop.PaymentStatus
	if s := q.Get("status"); s != "" {
		ps := shop.PaymentStatus(s)
		status = &ps
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	pageOut, err := h.Orders.List(ctx, userID, page, limit, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOut)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, agg *shop.OrderAggregate) {
	if agg == nil || agg.Payment == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, agg.Order.ID)
	b, _ := json.Marshal(map[string]any{"status": agg.Payment.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
