package services

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

const tokenLifetime = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

// AuthService verifies credentials against directory records, records login
// history and issues RS256 session tokens.
type AuthService struct {
	store      ports.TreeStore
	blacklist  ports.TokenBlacklist
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(store ports.TreeStore, blacklist ports.TokenBlacklist, privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey) *AuthService {
	return &AuthService{store: store, blacklist: blacklist, privateKey: privateKey, publicKey: publicKey}
}

// SignIn authenticates by email and password. Disabled accounts are
// refused before any token is issued; an absent enabled field counts as
// enabled. On success lastLogin is patched and a history entry appended.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	userID, user, err := s.findByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsEnabled() {
		return "", ErrAccountDisabled
	}

	s.recordLogin(ctx, userID)

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

// SignOut voids the token until its natural expiry.
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.publicKey, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidCredentials
	}

	ttl := tokenLifetime
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		if remaining := time.Until(exp.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return s.blacklist.Revoke(ctx, HashToken(tokenString), ttl)
}

// HashToken derives the blacklist key for a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (string, *domain.User, error) {
	rows, err := s.store.Query(ctx, "users", "email", &email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var user domain.User
		if json.Unmarshal(rows[k], &user) == nil && user.PasswordHash != "" {
			user.ID = k
			return k, &user, nil
		}
	}
	return "", nil, ErrInvalidCredentials
}

// recordLogin patches lastLogin and appends a history timestamp. A failure
// here never blocks the sign-in.
func (s *AuthService) recordLogin(ctx context.Context, userID string) {
	now := time.Now().UnixMilli()
	err := s.store.Patch(ctx, "users/"+userID, map[string]any{
		"logins/lastLogin":                   now,
		"logins/history/" + uuid.NewString(): now,
	})
	if err != nil {
		log.Printf("auth: failed to record login for %s: %v", userID, err)
	}
}
