package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestExpired(t *testing.T) {
	live := signed(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix()})
	stale := signed(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()})

	if Expired(live, 0) {
		t.Fatal("live token reported expired")
	}
	if !Expired(stale, 0) {
		t.Fatal("stale token reported live")
	}
}

func TestExpiredLeeway(t *testing.T) {
	// Expires in 10s; a 30s leeway treats it as already gone.
	token := signed(t, jwt.MapClaims{"exp": time.Now().Add(10 * time.Second).Unix()})

	if Expired(token, 0) {
		t.Fatal("token within validity reported expired without leeway")
	}
	if !Expired(token, 30*time.Second) {
		t.Fatal("token inside leeway window reported live")
	}
}

func TestExpiredLenientOnOpaqueTokens(t *testing.T) {
	noExp := signed(t, jwt.MapClaims{"sub": "u-1"})

	for _, token := range []string{"", "not-a-jwt", "a.b.c", noExp} {
		if Expired(token, time.Minute) {
			t.Fatalf("token %q reported expired; backend decides", token)
		}
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signed(t, jwt.MapClaims{"exp": exp.Unix()})

	if got := ExpiresAt(token); !got.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", got, exp)
	}
	if got := ExpiresAt("not-a-jwt"); !got.IsZero() {
		t.Fatalf("ExpiresAt on garbage = %v, want zero", got)
	}
	if got := ExpiresAt(""); !got.IsZero() {
		t.Fatalf("ExpiresAt on empty = %v, want zero", got)
	}
}
