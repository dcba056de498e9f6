package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/metrics"
)

// ErrTaskNotFound reports a completion attempt against a task instance that
// was never generated for this user.
var ErrTaskNotFound = errors.New("task instance not found")

// TaskService serves a volunteer's own checklist and records completions.
// Completion only ever touches status and completedAt; order is immutable
// after creation.
type TaskService struct {
	store ports.TreeStore
}

var _ ports.TaskService = (*TaskService)(nil)

func NewTaskService(store ports.TreeStore) *TaskService {
	return &TaskService{store: store}
}

// UserTasks returns the caller's checklist for one event. A user holds one
// role per event; with no task subtree the result is ErrNotFound.
func (s *TaskService) UserTasks(ctx context.Context, eventID, userID string) (*ports.UserTaskView, error) {
	raw, err := s.store.Read(ctx, "coreTasks/"+eventID+"/"+userID)
	if err != nil {
		return nil, err
	}
	var byRole map[string]domain.RoleTasks
	if err := json.Unmarshal(raw, &byRole); err != nil {
		return nil, fmt.Errorf("decode tasks for %s/%s: %w", eventID, userID, err)
	}
	if len(byRole) == 0 {
		return nil, ports.ErrNotFound
	}

	// Single role per event; pick deterministically if the data holds more.
	roleIDs := make([]string, 0, len(byRole))
	for id := range byRole {
		roleIDs = append(roleIDs, id)
	}
	sort.Strings(roleIDs)
	roleID := roleIDs[0]

	view := &ports.UserTaskView{RoleID: roleID, Tasks: byRole[roleID]}
	if raw, err := s.store.Read(ctx, "roles/"+roleID+"/name"); err == nil {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			view.RoleName = name
		}
	}
	return view, nil
}

// CompleteTask marks one of the caller's own task instances done. The
// instance must already exist; completion never creates tasks.
func (s *TaskService) CompleteTask(ctx context.Context, eventID, userID, roleID string, phase domain.Phase, taskID string) error {
	path := fmt.Sprintf("coreTasks/%s/%s/%s/%s/%s", eventID, userID, roleID, phase, taskID)
	if _, err := s.store.Read(ctx, path); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	err := s.store.Patch(ctx, path, map[string]any{
		"status":      true,
		"completedAt": time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("complete task %s: %w", path, err)
	}
	metrics.TasksCompleted.Inc()
	return nil
}
