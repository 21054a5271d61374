package auth

import (
	"errors"
	"testing"
	"time"
)

func newAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := HashPassword("hymns")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return New(hash, []byte("0123456789abcdef"), time.Hour)
}

func TestLoginAndVerify(t *testing.T) {
	a := newAuthenticator(t)

	token, expires, err := a.Login("hymns")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected future expiry, got %v", expires)
	}

	claims, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Role != operatorRole || claims.Issuer != issuer {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	a := newAuthenticator(t)

	if _, _, err := a.Login("psalms"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	a := newAuthenticator(t)
	token, _, err := a.Login("hymns")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other := New(string(a.hash), []byte("fedcba9876543210"), time.Hour)
	expired := newAuthenticator(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Login("hymns")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	tests := []struct {
		name  string
		a     *Authenticator
		token string
	}{
		{name: "garbage", a: a, token: "not-a-token"},
		{name: "other secret", a: other, token: token},
		{name: "expired", a: a, token: old},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.a.Verify(tc.token); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	a := New("", []byte("0123456789abcdef"), time.Hour)

	if a.Enabled() {
		t.Fatal("expected authentication to be disabled")
	}
	if _, _, err := a.Login("anything"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
