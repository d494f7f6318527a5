package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const MinCost = 12

// Hasher wraps bcrypt for passwords and refresh-token fingerprints, plus a
// SHA-256 fingerprint for reset grants.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < MinCost {
		cost = MinCost
	}

	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("cannot hash empty input")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches digest. bcrypt's comparison is
// constant-time over the derived key.
func (h *Hasher) Verify(plaintext string, digest string) bool {
	if digest == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// HashToken stores a one-way fingerprint of a long token. The token is
// pre-hashed because bcrypt only consumes the first 72 bytes of input and a
// signed token is far longer than that.
func (h *Hasher) HashToken(token string) (string, error) {
	return h.Hash(Fingerprint(token))
}

func (h *Hasher) VerifyToken(token string, digest string) bool {
	return h.Verify(Fingerprint(token), digest)
}

// Fingerprint returns the hex SHA-256 of token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func VerifyFingerprint(token string, storedFingerprint string) bool {
	if storedFingerprint == "" {
		return false
	}

	computed := Fingerprint(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedFingerprint)) == 1
}
