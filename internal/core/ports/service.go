package ports

import (
	"context"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
)

// Action names a guarded operation. The policy table in the access service
// maps (role, action) to allow/deny; nothing else hard-codes role strings.
type Action string

const (
	ActionViewMenu      Action = "menu.view"
	ActionViewDashboard Action = "dashboard.view"
	ActionViewCatalog   Action = "catalog.view"
	ActionListEvents    Action = "events.list"
	ActionScheduleEvent Action = "events.schedule"
	ActionViewProgress  Action = "events.progress"
	ActionViewOwnTasks  Action = "tasks.view"
	ActionCompleteTask  Action = "tasks.complete"
	ActionListUsers     Action = "users.list"
	ActionCreateUser    Action = "users.create"
	ActionSetUserStatus Action = "users.status"
)

type AuthService interface {
	// SignIn verifies credentials and returns a signed session token.
	SignIn(ctx context.Context, email, password string) (string, error)
	// SignOut revokes the token for its remaining lifetime.
	SignOut(ctx context.Context, token string) error
}

type AccessService interface {
	// ResolveRole never fails: lookup errors degrade to RoleGuest.
	ResolveRole(ctx context.Context, userID, email string) domain.Role
	IsAdmin(ctx context.Context, userID, email string) bool
	// IsEnabled is the per-navigation guard check; an absent enabled field
	// or a read failure counts as enabled.
	IsEnabled(ctx context.Context, userID string) bool
	Allowed(role domain.Role, action Action) bool
}

// ScheduleRequest is the operator's input for a new event: a raw date
// (MM/DD/YYYY), a raw time (HH:MM) and the role name -> user ids map built
// on the assignment screen.
type ScheduleRequest struct {
	Title       string              `json:"title,omitempty"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Assignments map[string][]string `json:"assignments"`
}

// EventSummary is one row of the services list, with display fields already
// derived for the viewer.
type EventSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	DateTimestamp int64  `json:"dateTimestamp"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Volunteers    int    `json:"volunteers"`
	HasTasks      bool   `json:"hasTasks"`
}

type SchedulingService interface {
	Schedule(ctx context.Context, req ScheduleRequest) (string, error)
	ListEvents(ctx context.Context, viewer domain.Role, viewerID string) ([]EventSummary, error)
}

type ProgressService interface {
	Progress(ctx context.Context, eventID string) (*domain.EventProgress, error)
}

// UserTaskView is one user's checklist for an event, together with the role
// it belongs to (a user holds one role per event).
type UserTaskView struct {
	RoleID   string           `json:"roleId"`
	RoleName string           `json:"roleName,omitempty"`
	Tasks    domain.RoleTasks `json:"tasks"`
}

type TaskService interface {
	UserTasks(ctx context.Context, eventID, userID string) (*UserTaskView, error)
	CompleteTask(ctx context.Context, eventID, userID, roleID string, phase domain.Phase, taskID string) error
}

// MenuEntry is a rendered-for-role menu item with its visible children in
// display order.
type MenuEntry struct {
	Title    string      `json:"title"`
	Link     string      `json:"link,omitempty"`
	IconSVG  string      `json:"iconSvg,omitempty"`
	Children []MenuEntry `json:"children,omitempty"`
}

type CatalogService interface {
	Roles(ctx context.Context) (map[string]domain.RoleDef, error)
	Menu(ctx context.Context, role domain.Role) []MenuEntry
	DashboardStats(ctx context.Context) []domain.StatCard
}

// UserPage is one page of the directory listing.
type UserPage struct {
	Users []domain.User `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
}

type DirectoryService interface {
	List(ctx context.Context, search, roleFilter string, page int) (*UserPage, error)
	Create(ctx context.Context, name, email, role, password string) (string, error)
	SetEnabled(ctx context.Context, userID string, enabled bool) error
}
