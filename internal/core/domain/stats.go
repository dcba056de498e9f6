package domain

// ProgressTier classifies a completion percentage for display. Boundaries
// are inclusive at 50 and 100 and exclusive at 0.
type ProgressTier string

const (
	TierComplete ProgressTier = "complete"
	TierMajority ProgressTier = "majority"
	TierStarted  ProgressTier = "started"
	TierNone     ProgressTier = "none"
)

// TierFor is a pure function of the percentage.
func TierFor(progressPercent int) ProgressTier {
	switch {
	case progressPercent >= 100:
		return TierComplete
	case progressPercent >= 50:
		return TierMajority
	case progressPercent > 0:
		return TierStarted
	default:
		return TierNone
	}
}

// RoleStats holds the rolled-up task counts for one role across every
// volunteer assigned to it for an event.
type RoleStats struct {
	RoleID          string       `json:"roleId"`
	RoleName        string       `json:"roleName,omitempty"`
	Volunteers      int          `json:"volunteers"`
	TotalTasks      int          `json:"totalTasks"`
	CompletedTasks  int          `json:"completedTasks"`
	PendingTasks    int          `json:"pendingTasks"`
	ProgressPercent int          `json:"progressPercent"`
	Tier            ProgressTier `json:"tier"`
}

// EventProgress is the aggregator output: per-role statistics plus an
// event-wide rollup.
type EventProgress struct {
	EventID string               `json:"eventId"`
	Roles   map[string]RoleStats `json:"roles"`
	Overall RoleStats            `json:"overall"`
}
