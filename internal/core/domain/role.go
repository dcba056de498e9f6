package domain

// Phase partitions a role's tasks relative to the event.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseDuring Phase = "during"
	PhaseAfter  Phase = "after"
)

// Phases is the canonical processing order.
var Phases = []Phase{PhaseBefore, PhaseDuring, PhaseAfter}

// TaskTemplate is one entry of a role's task catalog. Order defines the
// display/processing sequence; values are not required to be unique.
type TaskTemplate struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"`
}

// RoleDef is a catalog entry stored under roles/{roleId}.
type RoleDef struct {
	ID      string                            `json:"id"`
	Name    string                            `json:"name"`
	Enabled bool                              `json:"enabled"`
	Icon    string                            `json:"icon,omitempty"`
	Tasks   map[Phase]map[string]TaskTemplate `json:"tasks,omitempty"`
}
