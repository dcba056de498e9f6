package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// PageSize matches the directory screen's pagination.
const PageSize = 12

var ErrEmailTaken = errors.New("email already registered")

// DirectoryService is the admin-facing user table: listing with filters and
// pagination, creation, and the enable/disable toggle.
type DirectoryService struct {
	store ports.TreeStore
	cache ports.RoleCache
}

var _ ports.DirectoryService = (*DirectoryService)(nil)

func NewDirectoryService(store ports.TreeStore, cache ports.RoleCache) *DirectoryService {
	return &DirectoryService{store: store, cache: cache}
}

// List filters by name/email substring and exact role (case-folded) and
// returns one page, ordered by name.
func (s *DirectoryService) List(ctx context.Context, search, roleFilter string, page int) (*ports.UserPage, error) {
	rows, err := s.store.Query(ctx, "users", "name", nil)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return &ports.UserPage{Users: []domain.User{}, Page: page}, nil
		}
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	wantRole := domain.NormalizeRole(roleFilter)

	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	filtered := make([]domain.User, 0, len(rows))
	for _, id := range ids {
		var user domain.User
		if err := json.Unmarshal(rows[id], &user); err != nil {
			log.Printf("directory: skipping malformed user %s: %v", id, err)
			continue
		}
		user.ID = id
		user.PasswordHash = ""

		if roleFilter != "" && domain.NormalizeRole(user.Role) != wantRole {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Name), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		filtered = append(filtered, user)
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })

	total := len(filtered)
	if page < 0 {
		page = 0
	}
	start := page * PageSize
	if start > total {
		start = total
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	return &ports.UserPage{Users: filtered[start:end], Total: total, Page: page}, nil
}

// Create registers a user with a fresh id and a bcrypt password hash. New
// accounts start enabled.
func (s *DirectoryService) Create(ctx context.Context, name, email, role, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("email and password are required")
	}

	existing, err := s.store.Query(ctx, "users", "email", &email)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return "", err
	}
	if len(existing) > 0 {
		return "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	enabled := true
	userID := uuid.NewString()
	user := domain.User{
		Name:         name,
		Email:        email,
		Role:         string(domain.NormalizeRole(role)),
		Enabled:      &enabled,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UnixMilli(),
	}
	if err := s.store.Write(ctx, "users/"+userID, user); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return userID, nil
}

// SetEnabled toggles the account flag and drops the cached role so the next
// guard check sees the change immediately.
func (s *DirectoryService) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	if _, err := s.store.Read(ctx, "users/"+userID); err != nil {
		return err
	}
	if err := s.store.Patch(ctx, "users/"+userID, map[string]any{"enabled": enabled}); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Printf("directory: role cache invalidate for %s: %v", userID, err)
		}
	}
	return nil
}
