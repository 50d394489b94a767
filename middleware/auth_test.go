package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthenticateValidToken(t *testing.T) {
	auth := NewAuthenticator(testSecret)

	var got PlayerClaims
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := PlayerFromContext(r.Context())
		if err != nil {
			t.Fatalf("PlayerFromContext: %v", err)
		}
		got = claims
	}))

	token := signToken(t, jwt.MapClaims{
		"player_id": 42,
		"level":     7,
		"role":      "player",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.PlayerID != 42 || got.Level != 7 || got.Role != RolePlayer {
		t.Fatalf("claims = %+v, want PlayerID 42, Level 7, role player", got)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for rejected requests")
	}))

	expired := signToken(t, jwt.MapClaims{
		"player_id": 42,
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"player_id": 42})
	wrongKeySigned, _ := wrongKey.SignedString([]byte("other-secret"))
	noPlayerID := signToken(t, jwt.MapClaims{"role": "player"})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKeySigned},
		{"missing player_id claim", "Bearer " + noPlayerID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	handler := auth.Authenticate(auth.RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	adminToken := signToken(t, jwt.MapClaims{"player_id": 1, "role": "admin"})
	playerToken := signToken(t, jwt.MapClaims{"player_id": 2, "role": "player"})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+playerToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("player status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
