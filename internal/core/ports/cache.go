package ports

import (
	"context"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
)

// RoleCache remembers a resolved role for the lifetime of a session so the
// directory is not re-read on every guarded request. Get returns ErrNotFound
// on a miss.
type RoleCache interface {
	Get(ctx context.Context, userID string) (domain.Role, error)
	Set(ctx context.Context, userID string, role domain.Role, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

// TokenBlacklist voids signed-out tokens until their natural expiry.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}
