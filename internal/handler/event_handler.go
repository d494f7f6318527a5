package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cabinet-backend/internal/model"
	"cabinet-backend/internal/service"
)

type EventHandler struct {
	events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateEventRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.events.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created, nil)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, events, listMeta(len(events)))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	cabinetEvent, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cabinetEvent, nil)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateEventRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.events.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, nil)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
