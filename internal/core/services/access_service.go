package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/metrics"
)

// policy is the single table gating every guarded action. Roles absent from
// an action's set are denied; nothing outside this table checks role
// strings.
var policy = map[ports.Action][]domain.Role{
	ports.ActionViewMenu:      {domain.RoleAdmin, domain.RoleOperator, domain.RoleStudent},
	ports.ActionViewDashboard: {domain.RoleAdmin, domain.RoleOperator},
	ports.ActionViewCatalog:   {domain.RoleAdmin, domain.RoleOperator},
	ports.ActionListEvents:    {domain.RoleAdmin, domain.RoleOperator},
	ports.ActionScheduleEvent: {domain.RoleAdmin},
	ports.ActionViewProgress:  {domain.RoleAdmin},
	ports.ActionViewOwnTasks:  {domain.RoleAdmin, domain.RoleOperator},
	ports.ActionCompleteTask:  {domain.RoleOperator, domain.RoleAdmin},
	ports.ActionListUsers:     {domain.RoleAdmin},
	ports.ActionCreateUser:    {domain.RoleAdmin},
	ports.ActionSetUserStatus: {domain.RoleAdmin},
}

// AccessService resolves a caller's role and answers authorization
// questions. Resolution is cached for the session lifetime; every failure
// mode degrades to guest rather than propagating.
type AccessService struct {
	store    ports.TreeStore
	cache    ports.RoleCache
	cacheTTL time.Duration
}

var _ ports.AccessService = (*AccessService)(nil)

func NewAccessService(store ports.TreeStore, cache ports.RoleCache, cacheTTL time.Duration) *AccessService {
	return &AccessService{store: store, cache: cache, cacheTTL: cacheTTL}
}

// ResolveRole looks the caller up by user id, falls back to the first email
// match across the directory, and defaults to guest. Values are lower-cased
// before they gate anything.
func (s *AccessService) ResolveRole(ctx context.Context, userID, email string) domain.Role {
	if s.cache != nil && userID != "" {
		if role, err := s.cache.Get(ctx, userID); err == nil {
			metrics.RoleResolutions.WithLabelValues("cache").Inc()
			return role
		} else if !errors.Is(err, ports.ErrNotFound) {
			log.Printf("access: role cache read for %s: %v", userID, err)
		}
	}

	role, source := s.lookupRole(ctx, userID, email)
	metrics.RoleResolutions.WithLabelValues(source).Inc()

	if s.cache != nil && userID != "" && role != domain.RoleGuest {
		if err := s.cache.Set(ctx, userID, role, s.cacheTTL); err != nil {
			log.Printf("access: role cache write for %s: %v", userID, err)
		}
	}
	return role
}

func (s *AccessService) lookupRole(ctx context.Context, userID, email string) (domain.Role, string) {
	if userID != "" {
		raw, err := s.store.Read(ctx, "users/"+userID+"/role")
		switch {
		case err == nil:
			var value string
			if json.Unmarshal(raw, &value) == nil && value != "" {
				return domain.NormalizeRole(value), "uid"
			}
		case !errors.Is(err, ports.ErrNotFound):
			log.Printf("access: role lookup for %s failed, defaulting to guest: %v", userID, err)
			return domain.RoleGuest, "guest"
		}
	}

	if email != "" {
		rows, err := s.store.Query(ctx, "users", "email", &email)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			log.Printf("access: email lookup for %s failed, defaulting to guest: %v", email, err)
			return domain.RoleGuest, "guest"
		}
		// First match wins; order among duplicates is undefined upstream,
		// so take the smallest key for repeatability.
		keys := make([]string, 0, len(rows))
		for k := range rows {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var user domain.User
			if json.Unmarshal(rows[k], &user) == nil && user.Role != "" {
				return domain.NormalizeRole(user.Role), "email"
			}
		}
	}

	return domain.RoleGuest, "guest"
}

func (s *AccessService) IsAdmin(ctx context.Context, userID, email string) bool {
	return s.ResolveRole(ctx, userID, email).IsAdmin()
}

// IsEnabled is the per-navigation guard check. An absent record, absent
// enabled field or failed read all count as enabled; only an explicit
// enabled == false locks the account out.
func (s *AccessService) IsEnabled(ctx context.Context, userID string) bool {
	raw, err := s.store.Read(ctx, "users/"+userID+"/enabled")
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			log.Printf("access: enabled check for %s: %v", userID, err)
		}
		return true
	}
	var enabled bool
	if err := json.Unmarshal(raw, &enabled); err != nil {
		return true
	}
	return enabled
}

func (s *AccessService) Allowed(role domain.Role, action ports.Action) bool {
	for _, allowed := range policy[action] {
		if role == allowed {
			return true
		}
	}
	return false
}
