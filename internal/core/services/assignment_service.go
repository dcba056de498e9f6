package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/metrics"
)

const defaultEventTitle = "Sunday Service"

// ErrDuplicateAssignment reports a user id appearing under more than one
// role in a single assignment map.
var ErrDuplicateAssignment = errors.New("user assigned to more than one role")

// SchedulingService turns an assignment map into an event record plus its
// core task tree and persists both, guarded by a pending marker so an
// interrupted dual write can be repaired later.
type SchedulingService struct {
	store     ports.TreeStore
	journal   ports.ScheduleJournal
	publisher ports.SchedulePublisher
}

var _ ports.SchedulingService = (*SchedulingService)(nil)

// NewSchedulingService wires the service. publisher may be nil; the
// schedule-created notification is best effort.
func NewSchedulingService(store ports.TreeStore, journal ports.ScheduleJournal, publisher ports.SchedulePublisher) *SchedulingService {
	return &SchedulingService{store: store, journal: journal, publisher: publisher}
}

// BuildAssignments collapses a role -> user-ids map into the event's
// membership set. Role information is discarded at this level.
func BuildAssignments(byRole map[string][]string) map[string]bool {
	out := make(map[string]bool)
	for _, userIDs := range byRole {
		for _, uid := range userIDs {
			out[uid] = true
		}
	}
	return out
}

// BuildTaskTree expands role task templates into per-user task instances.
// For every (role, user) pair, every phase with templates yields a phase
// map holding the enabled templates sorted by ascending order (ties broken
// by task id). Role names missing from the catalog, or catalog entries
// without tasks, contribute nothing. A user id under two roles is an error.
func BuildTaskTree(byRole map[string][]string, catalog map[string]domain.RoleDef) (domain.TaskTree, error) {
	// Deterministic role iteration keeps duplicate detection stable.
	roleNames := make([]string, 0, len(byRole))
	for name := range byRole {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)

	assignedRole := make(map[string]string)
	for _, roleName := range roleNames {
		for _, uid := range byRole[roleName] {
			if prev, dup := assignedRole[uid]; dup && prev != roleName {
				return nil, fmt.Errorf("%w: user %s in %s and %s", ErrDuplicateAssignment, uid, prev, roleName)
			}
			assignedRole[uid] = roleName
		}
	}

	tree := make(domain.TaskTree)
	for _, roleName := range roleNames {
		role, ok := findRoleByName(catalog, roleName)
		if !ok || role.Tasks == nil {
			continue
		}

		for _, uid := range byRole[roleName] {
			roleTasks := buildRoleTasks(role)
			if tree[uid] == nil {
				tree[uid] = make(map[string]domain.RoleTasks)
			}
			tree[uid][role.ID] = roleTasks
		}
	}
	return tree, nil
}

func findRoleByName(catalog map[string]domain.RoleDef, name string) (domain.RoleDef, bool) {
	// Catalog keys are role ids; the assignment screen works with names.
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if catalog[k].Name == name {
			role := catalog[k]
			if role.ID == "" {
				role.ID = k
			}
			return role, true
		}
	}
	return domain.RoleDef{}, false
}

func buildRoleTasks(role domain.RoleDef) domain.RoleTasks {
	out := make(domain.RoleTasks)
	for _, phase := range domain.Phases {
		templates := role.Tasks[phase]
		if len(templates) == 0 {
			// No templates at all for this phase: the key is omitted.
			continue
		}

		type entry struct {
			id   string
			tmpl domain.TaskTemplate
		}
		enabled := make([]entry, 0, len(templates))
		for id, tmpl := range templates {
			if tmpl.Enabled {
				enabled = append(enabled, entry{id: id, tmpl: tmpl})
			}
		}
		sort.SliceStable(enabled, func(i, j int) bool {
			if enabled[i].tmpl.Order != enabled[j].tmpl.Order {
				return enabled[i].tmpl.Order < enabled[j].tmpl.Order
			}
			return enabled[i].id < enabled[j].id
		})

		// Templates existed pre-filter, so the phase map is kept even when
		// every one of them was disabled.
		phaseTasks := domain.NewPhaseTasks()
		for _, e := range enabled {
			phaseTasks.Set(e.id, domain.TaskInstance{
				Order:       e.tmpl.Order,
				Status:      false,
				CompletedAt: 0,
			})
		}
		out[phase] = phaseTasks
	}
	return out
}

// Schedule derives the event id from the raw date, builds both documents,
// marks the schedule pending and then issues the two writes as independent
// concurrent requests. The marker is cleared only after both succeed; a
// leftover marker is the reconciler's cue.
func (s *SchedulingService) Schedule(ctx context.Context, req ports.ScheduleRequest) (string, error) {
	date, err := time.Parse("01/02/2006", req.Date)
	if err != nil {
		return "", fmt.Errorf("invalid service date %q: %w", req.Date, err)
	}
	clock, err := time.Parse("15:04", req.Time)
	if err != nil {
		return "", fmt.Errorf("invalid service time %q: %w", req.Time, err)
	}

	catalog, err := s.readCatalog(ctx)
	if err != nil {
		return "", err
	}

	tree, err := BuildTaskTree(req.Assignments, catalog)
	if err != nil {
		return "", err
	}

	title := req.Title
	if title == "" {
		title = defaultEventTitle
	}

	timestamp := date.UnixMilli()
	eventID := strconv.FormatInt(timestamp, 10)
	event := domain.Event{
		Title:         title,
		Date:          date.Format("Monday, January 2, 2006"),
		Time:          clock.Format("3:04 PM"),
		DateTimestamp: timestamp,
		Status:        domain.StatusUpcoming,
		Type:          domain.TypeUpcoming,
		Enabled:       true,
		Assignments:   BuildAssignments(req.Assignments),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	treeJSON, err := json.Marshal(tree)
	if err != nil {
		return "", err
	}

	if err := s.journal.MarkPending(ctx, eventID, ports.SchedulePayload{
		Event:    eventJSON,
		TaskTree: treeJSON,
	}); err != nil {
		return "", fmt.Errorf("mark schedule pending: %w", err)
	}

	errs := make(chan error, 2)
	go func() { errs <- s.store.Write(ctx, "services/"+eventID, json.RawMessage(eventJSON)) }()
	go func() { errs <- s.store.Write(ctx, "coreTasks/"+eventID, json.RawMessage(treeJSON)) }()
	for i := 0; i < 2; i++ {
		if werr := <-errs; werr != nil {
			// The marker stays; the reconciler finishes the job.
			return "", fmt.Errorf("schedule write failed: %w", werr)
		}
	}

	if err := s.journal.ClearPending(ctx, eventID); err != nil {
		log.Printf("scheduling: failed to clear pending marker %s: %v", eventID, err)
	}
	metrics.SchedulesCreated.Inc()

	if s.publisher != nil {
		evt := ports.ScheduleCreatedEvent{
			EventID:    eventID,
			Title:      event.Title,
			Date:       event.Date,
			Time:       event.Time,
			Volunteers: len(event.Assignments),
		}
		if err := s.publisher.PublishScheduleCreated(ctx, evt); err != nil {
			log.Printf("scheduling: publish schedule created %s: %v", eventID, err)
		}
	}

	return eventID, nil
}

// ListEvents returns enabled events ordered by date. Operators only see
// events they are assigned to, and get a has-tasks flag derived from their
// own task subtree.
func (s *SchedulingService) ListEvents(ctx context.Context, viewer domain.Role, viewerID string) ([]ports.EventSummary, error) {
	rows, err := s.store.Query(ctx, "services", "dateTimestamp", nil)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]ports.EventSummary, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var event domain.Event
		if err := json.Unmarshal(rows[id], &event); err != nil {
			log.Printf("scheduling: skipping malformed event %s: %v", id, err)
			continue
		}
		if !event.Enabled {
			continue
		}
		if viewer == domain.RoleOperator && !event.IsAssigned(viewerID) {
			continue
		}

		summary := ports.EventSummary{
			ID:            id,
			Title:         event.Title,
			Date:          event.Date,
			Time:          event.Time,
			DateTimestamp: event.DateTimestamp,
			Type:          event.Type,
			Status:        event.DisplayStatus(viewer),
			Volunteers:    len(event.Assignments),
		}
		if viewer == domain.RoleOperator {
			summary.HasTasks = s.userHasTasks(ctx, id, viewerID)
		}
		out = append(out, summary)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DateTimestamp < out[j].DateTimestamp })
	return out, nil
}

func (s *SchedulingService) userHasTasks(ctx context.Context, eventID, userID string) bool {
	raw, err := s.store.Read(ctx, "coreTasks/"+eventID+"/"+userID)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			log.Printf("scheduling: task lookup for %s/%s: %v", eventID, userID, err)
		}
		return false
	}
	var byRole map[string]domain.RoleTasks
	if err := json.Unmarshal(raw, &byRole); err != nil {
		return false
	}
	for _, roleTasks := range byRole {
		if len(roleTasks) > 0 {
			return true
		}
	}
	return false
}

func (s *SchedulingService) readCatalog(ctx context.Context) (map[string]domain.RoleDef, error) {
	raw, err := s.store.Read(ctx, "roles")
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read role catalog: %w", err)
	}
	var catalog map[string]domain.RoleDef
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("decode role catalog: %w", err)
	}
	return catalog, nil
}
