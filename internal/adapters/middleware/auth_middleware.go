package middleware

import (
	"context"
	"crypto/rsa"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/services"
)

// AuthMiddleware validates session tokens and enforces the policy table.
// Every guarded request re-runs the disabled-account check; the role itself
// comes from the access service (cached per session), not from the token.
type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	access    ports.AccessService
	blacklist ports.TokenBlacklist
}

func NewAuthMiddleware(publicKey *rsa.PublicKey, access ports.AccessService, blacklist ports.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		publicKey: publicKey,
		access:    access,
		blacklist: blacklist,
	}
}

type contextKey string

const (
	UserIDKey contextKey = "userID"
	EmailKey  contextKey = "email"
	RoleKey   contextKey = "role"
)

func (m *AuthMiddleware) Require(action ports.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Printf("Missing Authorization header")
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Printf("Invalid Authorization header format")
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		})
		if err != nil || !token.Valid {
			log.Printf("Token parse error: %v", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if m.blacklist != nil {
			revoked, err := m.blacklist.IsRevoked(r.Context(), services.HashToken(tokenString))
			if err != nil {
				log.Printf("Blacklist check failed: %v", err)
			} else if revoked {
				http.Error(w, "token revoked", http.StatusUnauthorized)
				return
			}
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			log.Printf("Missing or invalid 'sub' claim: %v", claims["sub"])
			http.Error(w, "invalid token: missing user ID", http.StatusUnauthorized)
			return
		}
		email, _ := claims["email"].(string)

		// Per-navigation guard: a disabled account is shut out on the spot,
		// whatever the action.
		if !m.access.IsEnabled(r.Context(), userID) {
			log.Printf("Disabled account %s rejected", userID)
			http.Error(w, "account disabled", http.StatusForbidden)
			return
		}

		role := m.access.ResolveRole(r.Context(), userID, email)
		if !m.access.Allowed(role, action) {
			log.Printf("Policy denial: role %s, action %s", role, action)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, EmailKey, email)
		ctx = context.WithValue(ctx, RoleKey, role)

		next(w, r.WithContext(ctx))
	}
}
