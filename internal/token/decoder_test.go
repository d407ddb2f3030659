package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestDecode_EmptyAndUndelimitedAreInvalidFormat(t *testing.T) {
	now := time.Unix(1700000000, 0)
	for _, raw := range []string{"", "   ", "notatoken"} {
		info := Decode(raw, now)
		if info.Valid || info.Reason != ReasonInvalidFormat {
			t.Fatalf("Decode(%q): expected invalid_format, got %+v", raw, info)
		}
	}
}

func TestDecode_TwoSegmentsAreInvalidStructure(t *testing.T) {
	info := Decode("header.payload", time.Unix(1700000000, 0))
	if info.Valid || info.Reason != ReasonInvalidStructure {
		t.Fatalf("expected invalid_structure, got %+v", info)
	}
}

func TestDecode_FourSegmentsAreInvalidStructure(t *testing.T) {
	info := Decode("a.b.c.d", time.Unix(1700000000, 0))
	if info.Reason != ReasonInvalidStructure {
		t.Fatalf("expected invalid_structure, got %+v", info)
	}
}

func TestDecode_GarbagePayloadIsDecodeFailure(t *testing.T) {
	info := Decode("header.###.signature", time.Unix(1700000000, 0))
	if info.Valid || info.Reason != ReasonDecodeFailure {
		t.Fatalf("expected decode_failure, got %+v", info)
	}
}

func TestDecode_NoExpClaimIsMissingExpiry(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "8:acs:resource_user"})
	info := Decode(raw, time.Unix(1700000000, 0))
	if info.Valid || info.Reason != ReasonMissingExpiry {
		t.Fatalf("expected missing_expiry, got %+v", info)
	}
}

func TestDecode_OneHourRemaining(t *testing.T) {
	now := time.Unix(1700000000, 0)
	raw := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})

	info := Decode(raw, now)
	if !info.Valid {
		t.Fatalf("expected valid token, got %+v", info)
	}
	if info.Expired {
		t.Fatalf("expected not expired")
	}
	if info.Remaining != "1h 0m" {
		t.Fatalf("expected remaining 1h 0m, got %q", info.Remaining)
	}
	if !info.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry instant: %v", info.ExpiresAt)
	}
}

func TestDecode_SubHourRemainingOmitsHours(t *testing.T) {
	now := time.Unix(1700000000, 0)
	raw := signedToken(t, jwt.MapClaims{"exp": now.Add(42 * time.Minute).Unix()})

	info := Decode(raw, now)
	if !info.Valid || info.Expired {
		t.Fatalf("expected live token, got %+v", info)
	}
	if info.Remaining != "42m" {
		t.Fatalf("expected remaining 42m, got %q", info.Remaining)
	}
}

func TestDecode_PastExpiryIsExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	raw := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})

	info := Decode(raw, now)
	if !info.Valid {
		t.Fatalf("expected structurally valid token, got %+v", info)
	}
	if !info.Expired {
		t.Fatalf("expected expired flag")
	}
	if info.Remaining != "" {
		t.Fatalf("expected no remaining string for expired token, got %q", info.Remaining)
	}
}

func TestDecode_IsDeterministicForFixedNow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	raw := signedToken(t, jwt.MapClaims{"exp": now.Add(90 * time.Minute).Unix()})

	a := Decode(raw, now)
	b := Decode(raw, now)
	if a != b {
		t.Fatalf("expected identical results, got %+v vs %+v", a, b)
	}
	if a.Remaining != "1h 30m" {
		t.Fatalf("expected remaining 1h 30m, got %q", a.Remaining)
	}
}
