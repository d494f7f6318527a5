package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cabinet-backend/internal/middleware"
	"cabinet-backend/internal/model"
	"cabinet-backend/internal/service"
	"cabinet-backend/pkg/apierror"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateNotificationRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.notifications.Broadcast(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created, nil)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	list, err := h.notifications.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, listMeta(len(list)))
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	list, err := h.notifications.ListUnreadForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, listMeta(len(list)))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"read": true}, nil)
}
