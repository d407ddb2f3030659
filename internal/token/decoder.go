package token

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Reason classifies why a credential could not be decoded.
type Reason string

const (
	ReasonInvalidFormat    Reason = "invalid_format"    // empty, or no segment separator at all
	ReasonInvalidStructure Reason = "invalid_structure" // not exactly three segments
	ReasonDecodeFailure    Reason = "decode_failure"    // payload is not base64 JSON
	ReasonMissingExpiry    Reason = "missing_expiry"    // payload has no exp claim
)

// Info is a projection of the credential for display purposes only.
// It is recomputed on demand and never stored; given the same raw token
// and the same now, Decode returns the same Info.
type Info struct {
	Valid     bool      `json:"valid"`
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
	Remaining string    `json:"remaining,omitempty"`
	Reason    Reason    `json:"reason,omitempty"`
}

// Decode structurally parses a three-segment bearer token and extracts its
// expiry for display. The signature is never verified; this is not an
// authentication check, only a convenience for the operator.
func Decode(raw string, now time.Time) Info {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.Contains(raw, ".") {
		return Info{Reason: ReasonInvalidFormat}
	}

	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return Info{Reason: ReasonInvalidStructure}
	}

	payload, err := jwt.NewParser().DecodeSegment(segments[1])
	if err != nil {
		return Info{Reason: ReasonDecodeFailure}
	}
	var claims struct {
		Exp *float64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Info{Reason: ReasonDecodeFailure}
	}
	if claims.Exp == nil {
		return Info{Reason: ReasonMissingExpiry}
	}

	expiresAt := time.Unix(int64(*claims.Exp), 0)
	info := Info{Valid: true, ExpiresAt: expiresAt}
	if !expiresAt.After(now) {
		info.Expired = true
		return info
	}
	info.Remaining = formatRemaining(expiresAt.Sub(now))
	return info
}

// formatRemaining renders a duration as "{hours}h {minutes}m", dropping the
// hour part below one hour.
func formatRemaining(d time.Duration) string {
	minutes := int(d.Minutes())
	hours := minutes / 60
	minutes = minutes % 60
	if hours >= 1 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
