package api

import (
	"net/http"
	"strconv"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
	"github.com/eyabmansour/pfe-licence-api/internal/services/discounts"
)

type discountHandlers struct {
	discounts *discounts.Service
}

type discountResponse struct {
	Discount *models.Discount      `json:"discount"`
	Rules    []models.DiscountRule `json:"rules,omitempty"`
}

func (h *discountHandlers) create(w http.ResponseWriter, r *http.Request) {
	var in discounts.DiscountInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	discount, err := h.discounts.CreateDiscount(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, discount)
}

func (h *discountHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "discountID")
	if err != nil {
		writeError(w, err)
		return
	}

	discount, rules, err := h.discounts.GetDiscount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, discountResponse{Discount: discount, Rules: rules})
}

func (h *discountHandlers) list(w http.ResponseWriter, r *http.Request) {
	var restaurantID *int64
	if raw := r.URL.Query().Get("restaurant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, apperrors.Validation("invalid restaurant_id query parameter"))
			return
		}
		restaurantID = &id
	}

	list, err := h.discounts.ListDiscounts(r.Context(), restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *discountHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "discountID")
	if err != nil {
		writeError(w, err)
		return
	}

	var in discounts.DiscountInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	discount, err := h.discounts.UpdateDiscount(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, discount)
}

func (h *discountHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "discountID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.discounts.DeleteDiscount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *discountHandlers) applyToRestaurant(w http.ResponseWriter, r *http.Request) {
	discountID, err := pathID(r, "discountID")
	if err != nil {
		writeError(w, err)
		return
	}
	restaurantID, err := pathID(r, "restaurantID")
	if err != nil {
		writeError(w, err)
		return
	}

	discount, err := h.discounts.ApplyToRestaurant(r.Context(), discountID, restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, discount)
}
