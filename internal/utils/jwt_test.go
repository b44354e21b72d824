package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewSessionTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	in := TokenClaims{ID: 42, Email: "tech@example.com", Role: "technician", FullName: "Tess Tech"}

	st, err := NewSessionToken(secret, in, 24)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if st.Token == "" {
		t.Fatal("empty token")
	}
	wantExp := time.Now().UTC().Add(24 * time.Hour)
	if st.Exp.Before(wantExp.Add(-time.Minute)) || st.Exp.After(wantExp.Add(time.Minute)) {
		t.Errorf("expiry %v not ~24h from now", st.Exp)
	}

	tok, err := jwt.Parse(st.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse: %v valid=%v", err, tok != nil && tok.Valid)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if got := uint64(claims["sub"].(float64)); got != in.ID {
		t.Errorf("sub = %d, want %d", got, in.ID)
	}
	if claims["email"] != in.Email {
		t.Errorf("email = %v, want %s", claims["email"], in.Email)
	}
	if claims["role"] != in.Role {
		t.Errorf("role = %v, want %s", claims["role"], in.Role)
	}
	if claims["full_name"] != in.FullName {
		t.Errorf("full_name = %v, want %s", claims["full_name"], in.FullName)
	}
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	st, err := NewSessionToken("secret-a", TokenClaims{ID: 1, Role: "user"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := jwt.Parse(st.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	if err == nil && tok.Valid {
		t.Fatal("token signed with secret-a validated under secret-b")
	}
}
