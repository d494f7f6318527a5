package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cabinet-backend/internal/middleware"
	"cabinet-backend/internal/model"
	"cabinet-backend/internal/service"
	"cabinet-backend/pkg/apierror"
)

type AvailabilityHandler struct {
	availabilities *service.AvailabilityService
}

func NewAvailabilityHandler(availabilities *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilities: availabilities}
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.CreateAvailabilityRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.availabilities.Create(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created, nil)
}

func (h *AvailabilityHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	list, err := h.availabilities.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, listMeta(len(list)))
}

func (h *AvailabilityHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.availabilities.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, listMeta(len(list)))
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.UpdateAvailabilityRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.availabilities.Update(r.Context(), chi.URLParam(r, "id"), claims.UserID, model.Role(claims.Role), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, nil)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.availabilities.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID, model.Role(claims.Role)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
