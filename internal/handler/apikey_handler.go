package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cabinet-backend/internal/middleware"
	"cabinet-backend/internal/model"
	"cabinet-backend/internal/service"
	"cabinet-backend/pkg/apierror"
)

type ApiKeyHandler struct {
	keys *service.ApiKeyService
}

func NewApiKeyHandler(keys *service.ApiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{keys: keys}
}

// Create returns the raw key in this response and never again.
func (h *ApiKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.CreateApiKeyRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.keys.Create(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created, nil)
}

func (h *ApiKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	keys, err := h.keys.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, keys, listMeta(len(keys)))
}

func (h *ApiKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.keys.Revoke(r.Context(), chi.URLParam(r, "id"), claims.UserID, model.Role(claims.Role)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"revoked": true}, nil)
}
