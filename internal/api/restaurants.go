package api

import (
	"net/http"

	"github.com/eyabmansour/pfe-licence-api/internal/models"
	"github.com/eyabmansour/pfe-licence-api/internal/services/restaurants"
)

type restaurantHandlers struct {
	restaurants *restaurants.Service
}

type requestStatusBody struct {
	Status string `json:"status"`
}

func (h *restaurantHandlers) register(w http.ResponseWriter, r *http.Request) {
	var profile restaurants.Profile
	if err := decodeJSON(r, &profile); err != nil {
		writeError(w, err)
		return
	}

	restaurant, err := h.restaurants.Register(r.Context(), callerID(r), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, restaurant)
}

func (h *restaurantHandlers) listOwned(w http.ResponseWriter, r *http.Request) {
	list, err := h.restaurants.ListOwnedRestaurants(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *restaurantHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurantID")
	if err != nil {
		writeError(w, err)
		return
	}

	var profile restaurants.Profile
	if err := decodeJSON(r, &profile); err != nil {
		writeError(w, err)
		return
	}

	restaurant, err := h.restaurants.UpdateRestaurant(r.Context(), id, callerID(r), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *restaurantHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurantID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.restaurants.DeleteRestaurant(r.Context(), id, callerID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *restaurantHandlers) submitRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurantID")
	if err != nil {
		writeError(w, err)
		return
	}

	request, err := h.restaurants.SubmitRequest(r.Context(), id, callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *restaurantHandlers) listPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.restaurants.ListPendingRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *restaurantHandlers) updateRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "requestID")
	if err != nil {
		writeError(w, err)
		return
	}

	var body requestStatusBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	status, err := models.ParseRestaurantStatus(body.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	request, err := h.restaurants.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *restaurantHandlers) switchRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "restaurantID")
	if err != nil {
		writeError(w, err)
		return
	}

	restaurant, err := h.restaurants.SwitchRestaurant(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}
