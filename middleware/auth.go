package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const playerContextKey contextKey = "player"

const (
	jwtClaimPlayerID = "player_id"
	jwtClaimLevel    = "level"
	jwtClaimRole     = "role"
)

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// PlayerClaims is the authenticated identity extracted from the token.
type PlayerClaims struct {
	PlayerID int
	Level    int
	Role     string
}

// Authenticator verifies HS256 bearer tokens and injects the player's
// claims into the request context.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			http.Error(w, "missing or malformed Authorization header", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		mapClaims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}
		claims, err := playerClaimsFromMap(mapClaims)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), playerContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route group to the listed roles. Must run after
// Authenticate.
func (a *Authenticator) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := PlayerFromContext(r.Context())
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if role == claims.Role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "insufficient permissions", http.StatusForbidden)
		})
	}
}

// PlayerFromContext returns the claims stored by Authenticate.
func PlayerFromContext(ctx context.Context) (PlayerClaims, error) {
	claims, ok := ctx.Value(playerContextKey).(PlayerClaims)
	if !ok {
		return PlayerClaims{}, errors.New("player claims not found in context")
	}
	return claims, nil
}

func playerClaimsFromMap(m jwt.MapClaims) (PlayerClaims, error) {
	playerID, err := intClaim(m, jwtClaimPlayerID)
	if err != nil {
		return PlayerClaims{}, err
	}
	if playerID <= 0 {
		return PlayerClaims{}, fmt.Errorf("invalid '%s' claim value: %d", jwtClaimPlayerID, playerID)
	}

	// Level defaults to zero for tokens minted before levels existed.
	level := 0
	if _, ok := m[jwtClaimLevel]; ok {
		if level, err = intClaim(m, jwtClaimLevel); err != nil {
			return PlayerClaims{}, err
		}
	}

	role := RolePlayer
	if raw, ok := m[jwtClaimRole]; ok {
		s, ok := raw.(string)
		if !ok {
			return PlayerClaims{}, fmt.Errorf("invalid type for '%s' claim: %T", jwtClaimRole, raw)
		}
		role = s
	}

	return PlayerClaims{PlayerID: playerID, Level: level, Role: role}, nil
}

// intClaim handles the float64 representation JSON numbers take after
// parsing, plus string-encoded integers from older token issuers.
func intClaim(m jwt.MapClaims, name string) (int, error) {
	raw, ok := m[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", name)
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim: %q", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: %T", name, raw)
	}
}
