package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// ProgressService rolls per-role completion statistics up from an event's
// core task tree. Statistics are recomputed from scratch on every read;
// nothing here mutates the tree or keeps counters.
type ProgressService struct {
	store ports.TreeStore
}

var _ ports.ProgressService = (*ProgressService)(nil)

func NewProgressService(store ports.TreeStore) *ProgressService {
	return &ProgressService{store: store}
}

// Progress loads the event's tree and aggregates it. An event with no task
// tree yields empty statistics, not an error.
func (s *ProgressService) Progress(ctx context.Context, eventID string) (*domain.EventProgress, error) {
	tree := domain.TaskTree{}
	raw, err := s.store.Read(ctx, "coreTasks/"+eventID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("read task tree %s: %w", eventID, err)
	}
	if err == nil {
		if uerr := json.Unmarshal(raw, &tree); uerr != nil {
			return nil, fmt.Errorf("decode task tree %s: %w", eventID, uerr)
		}
	}

	progress := Aggregate(tree)
	progress.EventID = eventID
	s.attachRoleNames(ctx, progress.Roles)
	return progress, nil
}

// Aggregate groups task instances by role id across all users and computes
// totals, completed and pending counts and a rounded completion percentage
// per role, plus an event-wide rollup. Pure function of the tree.
func Aggregate(tree domain.TaskTree) *domain.EventProgress {
	perRole := make(map[string]*domain.RoleStats)

	for _, rolesByID := range tree {
		for roleID, roleTasks := range rolesByID {
			stats := perRole[roleID]
			if stats == nil {
				stats = &domain.RoleStats{RoleID: roleID}
				perRole[roleID] = stats
			}
			stats.Volunteers++

			for _, phase := range domain.Phases {
				phaseTasks := roleTasks[phase]
				for _, taskID := range phaseTasks.IDs() {
					stats.TotalTasks++
					if inst, ok := phaseTasks.Get(taskID); ok && inst.Status {
						stats.CompletedTasks++
					}
				}
			}
		}
	}

	out := &domain.EventProgress{Roles: make(map[string]domain.RoleStats, len(perRole))}
	overall := domain.RoleStats{RoleID: "overall"}
	for roleID, stats := range perRole {
		finishStats(stats)
		overall.Volunteers += stats.Volunteers
		overall.TotalTasks += stats.TotalTasks
		overall.CompletedTasks += stats.CompletedTasks
		out.Roles[roleID] = *stats
	}
	finishStats(&overall)
	out.Overall = overall
	return out
}

func finishStats(stats *domain.RoleStats) {
	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	if stats.TotalTasks > 0 {
		stats.ProgressPercent = int(math.Round(100 * float64(stats.CompletedTasks) / float64(stats.TotalTasks)))
	} else {
		stats.ProgressPercent = 0
	}
	stats.Tier = domain.TierFor(stats.ProgressPercent)
}

// attachRoleNames decorates statistics with catalog display names. A failed
// catalog read degrades to bare role ids.
func (s *ProgressService) attachRoleNames(ctx context.Context, roles map[string]domain.RoleStats) {
	if len(roles) == 0 {
		return
	}
	raw, err := s.store.Read(ctx, "roles")
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			log.Printf("progress: role catalog read failed: %v", err)
		}
		return
	}
	var catalog map[string]domain.RoleDef
	if err := json.Unmarshal(raw, &catalog); err != nil {
		log.Printf("progress: role catalog decode failed: %v", err)
		return
	}
	for roleID, stats := range roles {
		if def, ok := catalog[roleID]; ok && def.Name != "" {
			stats.RoleName = def.Name
			roles[roleID] = stats
		}
	}
}
