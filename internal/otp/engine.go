package otp

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Engine derives and checks time-stepped one-time codes. Codes are computed
// from the account's enrolled secret and the current time step, so no
// per-challenge state is stored; a code stays valid within +-window steps.
type Engine struct {
	issuer string
	step   uint
	window uint
	digits otp.Digits
	now    func() time.Time
}

func NewEngine(issuer string, step uint, window uint, digits int) *Engine {
	if step == 0 {
		step = 120
	}

	return &Engine{
		issuer: issuer,
		step:   step,
		window: window,
		digits: otp.Digits(digits),
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// NewSecret enrolls a fresh random secret for the account. The secret is
// base32 and must be stored server-side; it is never derived from account
// attributes.
func (e *Engine) NewSecret(accountEmail string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: accountEmail,
		Period:      e.step,
		Digits:      e.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("generate otp secret: %w", err)
	}

	return key.Secret(), nil
}

func (e *Engine) Generate(secret string) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, e.now().UTC(), e.validateOpts())
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}

	return code, nil
}

// Validate recomputes the code for the current step and its neighbors within
// the window and compares.
func (e *Engine) Validate(code string, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, e.now().UTC(), e.validateOpts())
	return err == nil && ok
}

func (e *Engine) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.step,
		Skew:      e.window,
		Digits:    e.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
