package token

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cabinet-backend/internal/model"
	"cabinet-backend/pkg/apierror"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindReset   Kind = "reset"
)

// Claims is the stable payload consumed by downstream authorization checks.
type Claims struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Ministry  string `json:"ministry"`
	Title     string `json:"title"`
	TokenKind string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies access, refresh, and reset tokens. Each kind has
// its own secret and lifetime, so a token of one kind never verifies as
// another.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	resetSecret   []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

func NewIssuer(accessSecret, refreshSecret, resetSecret string, accessTTL, refreshTTL, resetTTL time.Duration) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" || resetSecret == "" {
		return nil, fmt.Errorf("all token signing secrets are required")
	}

	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		resetSecret:   []byte(resetSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		resetTTL:      resetTTL,
		now:           time.Now,
	}, nil
}

// WithClock overrides the time source. Tests only.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

func (i *Issuer) Issue(user model.User, kind Kind) (string, error) {
	secret, ttl, err := i.kindParams(kind)
	if err != nil {
		return "", err
	}

	now := i.now().UTC()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Ministry:  user.Ministry,
		Title:     user.Title,
		TokenKind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, nil
}

// IssuePair signs the access and refresh tokens concurrently; the two
// signatures are cryptographically independent.
func (i *Issuer) IssuePair(user model.User) (model.TokenPair, error) {
	var wg sync.WaitGroup
	var access, refresh string
	var accessErr, refreshErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		access, accessErr = i.Issue(user, KindAccess)
	}()
	go func() {
		defer wg.Done()
		refresh, refreshErr = i.Issue(user, KindRefresh)
	}()
	wg.Wait()

	if accessErr != nil {
		return model.TokenPair{}, accessErr
	}
	if refreshErr != nil {
		return model.TokenPair{}, refreshErr
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(i.accessTTL.Seconds()),
	}, nil
}

func (i *Issuer) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret, _, err := i.kindParams(kind)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierror.Unauthorized("token has expired")
		}
		return nil, apierror.Unauthorized("invalid token")
	}

	if !parsed.Valid || claims.TokenKind != string(kind) {
		return nil, apierror.Unauthorized("invalid token")
	}

	if claims.UserID == "" {
		return nil, apierror.Unauthorized("invalid token subject")
	}

	return claims, nil
}

func (i *Issuer) kindParams(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return i.accessSecret, i.accessTTL, nil
	case KindRefresh:
		return i.refreshSecret, i.refreshTTL, nil
	case KindReset:
		return i.resetSecret, i.resetTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token kind %q", kind)
	}
}
