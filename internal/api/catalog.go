package api

import (
	"net/http"

	"github.com/eyabmansour/pfe-licence-api/internal/services/catalog"
)

type catalogHandlers struct {
	catalog *catalog.Service
}

func (h *catalogHandlers) createItem(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := pathID(r, "restaurantID")
	if err != nil {
		writeError(w, err)
		return
	}

	var in catalog.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.CreateMenuItem(r.Context(), restaurantID, callerID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *catalogHandlers) listItems(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := pathID(r, "restaurantID")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.catalog.ListMenuItems(r.Context(), restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *catalogHandlers) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.GetMenuItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *catalogHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}

	var in catalog.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.catalog.UpdateMenuItem(r.Context(), id, callerID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *catalogHandlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalog.DeleteMenuItem(r.Context(), id, callerID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
