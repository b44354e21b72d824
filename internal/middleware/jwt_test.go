package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/essu-water/maintenance-api/internal/utils"
)

const testSecret = "unit-test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   c.Get("user_id"),
		"email":     c.Get("email"),
		"role":      c.Get("role"),
		"full_name": c.Get("full_name"),
	})
}

func doAuth(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := JWTAuth(testSecret)(okHandler)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func errMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	return body["error"]
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec := doAuth(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errMessage(t, rec); got != "missing bearer token" {
		t.Errorf("message = %q, want distinct missing-token message", got)
	}
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	rec := doAuth(t, "Basic abc123")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthInvalidToken(t *testing.T) {
	rec := doAuth(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errMessage(t, rec); got != "invalid token" {
		t.Errorf("message = %q, want invalid-token message", got)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	st, err := utils.NewSessionToken("other-secret", utils.TokenClaims{ID: 1, Role: "user"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	rec := doAuth(t, "Bearer "+st.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthValidTokenExposesClaims(t *testing.T) {
	st, err := utils.NewSessionToken(testSecret, utils.TokenClaims{
		ID: 7, Email: "tech@x.com", Role: "technician", FullName: "Terry Tech",
	}, 24)
	if err != nil {
		t.Fatal(err)
	}
	rec := doAuth(t, "Bearer "+st.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["user_id"].(float64) != 7 {
		t.Errorf("user_id = %v, want 7", body["user_id"])
	}
	if body["email"] != "tech@x.com" || body["role"] != "technician" || body["full_name"] != "Terry Tech" {
		t.Errorf("claims not propagated: %+v", body)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	// TTL of -1 hour produces an already-expired token.
	st, err := utils.NewSessionToken(testSecret, utils.TokenClaims{ID: 1, Role: "user"}, -1)
	if err != nil {
		t.Fatal(err)
	}
	if st.Exp.After(time.Now()) {
		t.Fatal("test token should be expired")
	}
	rec := doAuth(t, "Bearer "+st.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errMessage(t, rec); got != "invalid token" {
		t.Errorf("message = %q, want invalid-token message", got)
	}
}
