package services_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/services"
	"github.com/gracepointe/serve-hub/scheduling-service/test/mocks"
)

func phaseWith(done map[string]bool, ids ...string) *domain.PhaseTasks {
	p := domain.NewPhaseTasks()
	for i, id := range ids {
		p.Set(id, domain.TaskInstance{Order: i + 1, Status: done[id]})
	}
	return p
}

// TestAggregate verifies the per-role rollup: two ushers with three tasks
// each, four of six completed.
func TestAggregate(t *testing.T) {
	tree := domain.TaskTree{
		"u1": {
			"ROLE_USHER": {
				domain.PhaseBefore: phaseWith(map[string]bool{"t1": true, "t2": true}, "t1", "t2"),
				domain.PhaseAfter:  phaseWith(map[string]bool{"t3": true}, "t3"),
			},
		},
		"u2": {
			"ROLE_USHER": {
				domain.PhaseBefore: phaseWith(map[string]bool{"t1": true}, "t1", "t2"),
				domain.PhaseAfter:  phaseWith(nil, "t3"),
			},
		},
		"u3": {
			"ROLE_GREETER": {
				domain.PhaseDuring: phaseWith(nil, "g1"),
			},
		},
	}

	progress := services.Aggregate(tree)

	usher := progress.Roles["ROLE_USHER"]
	want := domain.RoleStats{
		RoleID:          "ROLE_USHER",
		Volunteers:      2,
		TotalTasks:      6,
		CompletedTasks:  4,
		PendingTasks:    2,
		ProgressPercent: 67,
		Tier:            domain.TierMajority,
	}
	if !reflect.DeepEqual(usher, want) {
		t.Errorf("usher stats:\n got %+v\nwant %+v", usher, want)
	}

	greeter := progress.Roles["ROLE_GREETER"]
	if greeter.ProgressPercent != 0 || greeter.Tier != domain.TierNone {
		t.Errorf("greeter with no completions should be tier none, got %+v", greeter)
	}

	overall := progress.Overall
	if overall.Volunteers != 3 || overall.TotalTasks != 7 || overall.CompletedTasks != 4 {
		t.Errorf("unexpected overall rollup %+v", overall)
	}
	if overall.ProgressPercent != 57 {
		t.Errorf("expected overall 57%%, got %d", overall.ProgressPercent)
	}
}

// TestAggregate_Rounding pins the half-up rounding of the percentage.
func TestAggregate_Rounding(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		percent   int
		tier      domain.ProgressTier
	}{
		{"one_third", 1, 3, 33, domain.TierStarted},
		{"two_thirds", 2, 3, 67, domain.TierMajority},
		{"exactly_half", 1, 2, 50, domain.TierMajority},
		{"all_done", 3, 3, 100, domain.TierComplete},
		{"none_done", 0, 4, 0, domain.TierNone},
		{"one_of_eight", 1, 8, 13, domain.TierStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewPhaseTasks()
			for i := 0; i < tt.total; i++ {
				p.Set(string(rune('a'+i)), domain.TaskInstance{Order: i, Status: i < tt.completed})
			}
			tree := domain.TaskTree{
				"u1": {"R": {domain.PhaseBefore: p}},
			}

			stats := services.Aggregate(tree).Roles["R"]
			if stats.ProgressPercent != tt.percent {
				t.Errorf("%d/%d: expected %d%%, got %d%%", tt.completed, tt.total, tt.percent, stats.ProgressPercent)
			}
			if stats.Tier != tt.tier {
				t.Errorf("%d/%d: expected tier %q, got %q", tt.completed, tt.total, tt.tier, stats.Tier)
			}
		})
	}
}

// TestAggregate_ZeroTasks ensures a role present with an empty phase never
// divides by zero.
func TestAggregate_ZeroTasks(t *testing.T) {
	tree := domain.TaskTree{
		"u1": {"R": {domain.PhaseBefore: domain.NewPhaseTasks()}},
	}

	stats := services.Aggregate(tree).Roles["R"]
	if stats.Volunteers != 1 || stats.TotalTasks != 0 || stats.ProgressPercent != 0 {
		t.Errorf("unexpected stats for empty checklist: %+v", stats)
	}
	if stats.Tier != domain.TierNone {
		t.Errorf("expected tier none, got %q", stats.Tier)
	}
}

// TestAggregate_Idempotent: aggregation is a pure read and must return the
// same result on repeated calls.
func TestAggregate_Idempotent(t *testing.T) {
	tree := domain.TaskTree{
		"u1": {"R": {domain.PhaseBefore: phaseWith(map[string]bool{"a": true}, "a", "b")}},
	}

	first := services.Aggregate(tree)
	second := services.Aggregate(tree)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestProgressService_Progress(t *testing.T) {
	store := mocks.NewMockTreeStore()
	store.Seed("roles", map[string]domain.RoleDef{
		"ROLE_USHER": {ID: "ROLE_USHER", Name: "Usher", Enabled: true},
	})
	store.Seed("coreTasks/1712", domain.TaskTree{
		"u1": {"ROLE_USHER": {domain.PhaseBefore: phaseWith(map[string]bool{"t1": true}, "t1", "t2")}},
	})
	service := services.NewProgressService(store)

	progress, err := service.Progress(context.Background(), "1712")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.EventID != "1712" {
		t.Errorf("expected event id 1712, got %s", progress.EventID)
	}

	usher := progress.Roles["ROLE_USHER"]
	if usher.RoleName != "Usher" {
		t.Errorf("expected catalog name decoration, got %q", usher.RoleName)
	}
	if usher.CompletedTasks != 1 || usher.TotalTasks != 2 || usher.ProgressPercent != 50 {
		t.Errorf("unexpected stats %+v", usher)
	}
}

// TestProgressService_MissingTree: an event without a task tree yields empty
// statistics, not an error.
func TestProgressService_MissingTree(t *testing.T) {
	service := services.NewProgressService(mocks.NewMockTreeStore())

	progress, err := service.Progress(context.Background(), "1712")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(progress.Roles) != 0 {
		t.Errorf("expected no role stats, got %v", progress.Roles)
	}
	if progress.Overall.TotalTasks != 0 || progress.Overall.Tier != domain.TierNone {
		t.Errorf("unexpected overall %+v", progress.Overall)
	}
}

// TestProgressService_CatalogFailureDegrades: a broken catalog read keeps the
// bare role ids instead of failing the request.
func TestProgressService_CatalogFailureDegrades(t *testing.T) {
	store := mocks.NewMockTreeStore()
	store.Seed("coreTasks/1712", domain.TaskTree{
		"u1": {"ROLE_USHER": {domain.PhaseBefore: phaseWith(nil, "t1")}},
	})
	store.ReadErrors["roles"] = context.DeadlineExceeded
	service := services.NewProgressService(store)

	progress, err := service.Progress(context.Background(), "1712")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Roles["ROLE_USHER"].RoleName != "" {
		t.Error("expected undecorated role id when the catalog is unavailable")
	}
}
