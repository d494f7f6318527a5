package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"cabinet-backend/internal/model"
	"cabinet-backend/internal/token"
)

type tokenVerifier interface {
	Verify(tokenString string, kind token.Kind) (*token.Claims, error)
}

type apiKeyValidator interface {
	Validate(ctx context.Context, rawKey string) (model.User, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

const apiKeyHeader = "X-Api-Key"

// AuthMiddleware gates routes behind either a bearer access token or an API
// key. Both paths land the same Claims in the request context, so handlers
// never care which one authenticated the caller.
type AuthMiddleware struct {
	verifier tokenVerifier
	apiKeys  apiKeyValidator
}

func NewAuthMiddleware(verifier tokenVerifier, apiKeys apiKeyValidator) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, apiKeys: apiKeys}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeAuthFailure(w, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims, err := m.verifier.Verify(strings.TrimSpace(header[7:]), token.KindAccess)
		if err != nil {
			writeAuthFailure(w, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// RequireApiKey authenticates via the X-Api-Key header. The resolved owner is
// projected into the same claims shape RequireAuth produces.
func (m *AuthMiddleware) RequireApiKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))
		if rawKey == "" {
			writeAuthFailure(w, "UNAUTHORIZED", "missing API key")
			return
		}

		user, err := m.apiKeys.Validate(r.Context(), rawKey)
		if err != nil {
			writeAuthFailure(w, "UNAUTHORIZED", "invalid API key")
			return
		}

		claims := &token.Claims{
			UserID:    user.ID,
			Email:     user.Email,
			Role:      string(user.Role),
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Ministry:  user.Ministry,
			Title:     user.Title,
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// RequireAuthOrApiKey accepts either credential, preferring the bearer token
// when both are present.
func (m *AuthMiddleware) RequireAuthOrApiKey(next http.Handler) http.Handler {
	bearer := m.RequireAuth(next)
	apiKey := m.RequireApiKey(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("Authorization")) != "" {
			bearer.ServeHTTP(w, r)
			return
		}
		apiKey.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthFailure(w, "UNAUTHORIZED", "authentication required")
				return
			}

			if _, exists := roleSet[strings.ToLower(claims.Role)]; !exists {
				writeAuthFailure(w, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func withClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*token.Claims)
	return claims, ok
}

func writeAuthFailure(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == "FORBIDDEN" {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusUnauthorized)
	}

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
