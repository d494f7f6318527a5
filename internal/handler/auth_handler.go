package handler

import (
	"errors"
	"net/http"
	"strings"

	"cabinet-backend/internal/metrics"
	"cabinet-backend/internal/middleware"
	"cabinet-backend/internal/model"
	"cabinet-backend/internal/service"
	"cabinet-backend/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		metrics.RecordLogin("failure")
		writeError(w, err)
		return
	}

	metrics.RecordLogin("success")
	writeSuccess(w, http.StatusOK, tokens, nil)
}

// LoginMFA runs the credential gate but returns a pending challenge instead
// of tokens; the code arrives by email.
func (h *AuthHandler) LoginMFA(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	challenge, err := h.service.LoginWithChallenge(r.Context(), payload.Email, payload.Password)
	if err != nil {
		metrics.RecordLogin("failure")
		writeError(w, err)
		return
	}

	metrics.RecordLogin("challenge")
	writeSuccess(w, http.StatusOK, challenge, nil)
}

func (h *AuthHandler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var payload model.VerifyTwoFactorRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.VerifyTwoFactor(r.Context(), payload.UserID, strings.TrimSpace(payload.Otp))
	if err != nil {
		metrics.RecordLogin("failure")
		writeError(w, err)
		return
	}

	metrics.RecordLogin("success")
	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.BadRequest("refresh_token is required", "refresh_token"))
		return
	}

	tokens, err := h.service.RefreshWithToken(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.service.Logout(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

// ForgotPassword always reports success for well-formed requests, so the
// endpoint cannot be used to probe which emails exist.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ForgotPasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(payload.Email) == "" {
		writeError(w, apierror.BadRequest("email is required", "email"))
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		var apiErr *apierror.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != "NOT_FOUND" {
			writeError(w, err)
			return
		}
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": "If the email exists, a reset link has been sent",
	}, nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetPasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), strings.TrimSpace(payload.Token), payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Password has been reset"}, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}
