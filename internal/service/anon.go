package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
)

// AnonAllowance is a per-browser case allowance for visitors without an
// account. It travels in a signed cookie, so the browser itself stores the
// counter and cannot tamper with it.
type AnonAllowance struct {
	Remaining   int       `json:"remaining"`
	LastUpdated time.Time `json:"last_updated"`
}

// AllowanceCodec signs and verifies AnonAllowance cookie values. The value
// format is base64(json) + "." + base64(hmac-sha256).
type AllowanceCodec struct {
	secret       []byte
	total        int
	expireWindow time.Duration
}

// NewAllowanceCodec constructs a codec. total is the per-window allowance;
// expireHours is the refill window.
func NewAllowanceCodec(secret string, total, expireHours int) *AllowanceCodec {
	return &AllowanceCodec{
		secret:       []byte(secret),
		total:        total,
		expireWindow: time.Duration(expireHours) * time.Hour,
	}
}

// New returns a fresh allowance starting at the full total.
func (c *AllowanceCodec) New(now time.Time) AnonAllowance {
	return AnonAllowance{Remaining: c.total, LastUpdated: now}
}

func (c *AllowanceCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Encode serializes and signs an allowance for the cookie value.
func (c *AllowanceCodec) Encode(a AnonAllowance) string {
	payload, _ := json.Marshal(a)
	return base64.RawURLEncoding.EncodeToString(payload) +
		"." + base64.RawURLEncoding.EncodeToString(c.sign(payload))
}

// Decode verifies the signature and returns the allowance. The second return
// is false for missing, malformed or tampered values. The MAC comparison is
// constant time.
func (c *AllowanceCodec) Decode(value string) (AnonAllowance, bool) {
	var a AnonAllowance
	dot := -1
	for i := 0; i < len(value); i++ {
		if value[i] == '.' {
			dot = i
			break
		}
	}
	if dot <= 0 || dot == len(value)-1 {
		return a, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(value[:dot])
	if err != nil {
		return a, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(value[dot+1:])
	if err != nil {
		return a, false
	}
	if !hmac.Equal(sig, c.sign(payload)) {
		return a, false
	}
	if err := json.Unmarshal(payload, &a); err != nil {
		return a, false
	}
	return a, true
}

// Refresh refills the allowance when the window has elapsed.
func (c *AllowanceCodec) Refresh(a AnonAllowance, now time.Time) AnonAllowance {
	if now.Sub(a.LastUpdated) >= c.expireWindow {
		return c.New(now)
	}
	return a
}

// Spend refills if due, then deducts n. Returns ErrAllowanceExceeded when the
// remaining allowance is too low; the refreshed state is returned either way
// so callers can re-set the cookie.
func (c *AllowanceCodec) Spend(a AnonAllowance, n int, now time.Time) (AnonAllowance, error) {
	a = c.Refresh(a, now)
	if n > 0 && a.Remaining < n {
		return a, ErrAllowanceExceeded
	}
	a.Remaining -= n
	return a, nil
}
