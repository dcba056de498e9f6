package domain

import "strings"

// Event statuses. Stored values vary in case across the data set, so all
// comparisons go through EqualStatus.
const (
	StatusUpcoming  = "Upcoming"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
)

// Event type tags.
const (
	TypeUpcoming = "upcoming"
	TypePast     = "past"
)

func EqualStatus(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Event is a scheduled occurrence stored under services/{id}. The id is the
// creation timestamp in Unix milliseconds, rendered as a string key.
// Assignments maps user id -> true and answers only "is this user on this
// event"; role information lives in the task tree.
type Event struct {
	Title         string          `json:"title"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	DateTimestamp int64           `json:"dateTimestamp"`
	Status        string          `json:"status"`
	Type          string          `json:"type"`
	Enabled       bool            `json:"enabled"`
	Icon          string          `json:"icon,omitempty"`
	Assignments   map[string]bool `json:"assignments,omitempty"`
}

// IsAssigned reports membership regardless of role.
func (e *Event) IsAssigned(userID string) bool {
	return e.Assignments[userID]
}

// DisplayStatus derives the label shown for this event to a viewer with the
// given role: operators see ongoing events as "Active".
func (e *Event) DisplayStatus(viewer Role) string {
	switch {
	case e.Type == TypeUpcoming:
		return StatusUpcoming
	case EqualStatus(e.Status, StatusOngoing):
		if viewer == RoleOperator {
			return "Active"
		}
		return StatusOngoing
	default:
		return e.Status
	}
}

// StatCard is a dashboard tile stored under dashboardStats.
type StatCard struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Icon    string `json:"icon,omitempty"`
	Enabled bool   `json:"enabled"`
}

// MenuItem is a navigation entry stored under menu. Roles may be absent
// (visible to everyone), a single string, or a list.
type MenuItem struct {
	ID       int                 `json:"id"`
	Title    string              `json:"title"`
	Link     string              `json:"link,omitempty"`
	IconSVG  string              `json:"iconSvg,omitempty"`
	Enable   bool                `json:"enable"`
	Roles    RoleSet             `json:"roles,omitempty"`
	Children map[string]MenuItem `json:"children,omitempty"`
}

// VisibleTo applies the enabled flag and the role restriction.
func (m *MenuItem) VisibleTo(role Role) bool {
	if !m.Enable {
		return false
	}
	return m.Roles.Allows(role)
}
