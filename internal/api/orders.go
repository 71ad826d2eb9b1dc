package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
	"github.com/eyabmansour/pfe-licence-api/internal/services/orders"
)

type orderHandlers struct {
	orders *orders.Service
}

type createOrderRequest struct {
	RestaurantID int64               `json:"restaurant_id"`
	Lines        []orders.LineInput  `json:"lines"`
	Details      orders.OrderDetails `json:"details"`
}

type orderLinesRequest struct {
	Lines []orders.LineInput `json:"lines"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid %s in path", name)
	}
	return id, nil
}

func (h *orderHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), callerID(r), req.RestaurantID, req.Lines, req.Details)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *orderHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *orderHandlers) addItems(w http.ResponseWriter, r *http.Request) {
	h.mutateLines(w, r, h.orders.AddItems)
}

func (h *orderHandlers) removeItems(w http.ResponseWriter, r *http.Request) {
	h.mutateLines(w, r, h.orders.RemoveItems)
}

func (h *orderHandlers) mutateLines(w http.ResponseWriter, r *http.Request,
	mutate func(ctx context.Context, orderID int64, lines []orders.LineInput) (*models.Order, error)) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req orderLinesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := mutate(r.Context(), id, req.Lines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *orderHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}

	var details orders.OrderDetails
	if err := decodeJSON(r, &details); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.UpdateOrder(r.Context(), id, details)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *orderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *orderHandlers) updatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req paymentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *orderHandlers) countMine(w http.ResponseWriter, r *http.Request) {
	count, err := h.orders.CountUserOrders(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
