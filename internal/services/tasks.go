package services

import (
	"strings"
	"time"

	"github.com/cm-taskflow/TF/internal/models"
)

// TaskService holds the task workflow rules: status transitions and the
// derived filtering/aggregation the list and dashboard views render.
// It is DB-free on purpose; handlers own persistence.
type TaskService struct{}

func NewTaskService() *TaskService { return &TaskService{} }

// StatusPatch computes the partial update for a status transition.
//
// Moving to "completed" stamps completed_at with now, but only when it was
// never set before: re-completing an already-completed task must not reset the
// recorded completion time. Moving anywhere else changes status alone, so a
// reopened task keeps the timestamp of its last completion.
func (s *TaskService) StatusPatch(t *models.Task, newStatus string, now time.Time) map[string]any {
	patch := map[string]any{"status": newStatus}
	if newStatus == models.TaskStatusCompleted && t.CompletedAt == nil {
		patch["completed_at"] = now
	}
	return patch
}

// ApplyStatusPatch mirrors a successful transition onto the in-memory task so
// the view can re-render without another fetch.
func (s *TaskService) ApplyStatusPatch(t *models.Task, patch map[string]any) {
	if v, ok := patch["status"].(string); ok {
		t.Status = v
	}
	if v, ok := patch["completed_at"].(time.Time); ok {
		t.CompletedAt = &v
	}
}

// FilterClients applies the clients list predicate: case-insensitive substring
// match of term against name, VAT number or director email. An empty term is
// the identity.
func FilterClients(clients []models.Client, term string) []models.Client {
	if term == "" {
		return clients
	}
	q := strings.ToLower(term)
	out := make([]models.Client, 0, len(clients))
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.VATNumber), q) ||
			strings.Contains(strings.ToLower(c.DirectorEmail), q) {
			out = append(out, c)
		}
	}
	return out
}

// FilterTasks applies the tasks list predicate: case-insensitive substring
// match of term against title, description or the joined client name, AND an
// exact status match. status "all" (or empty) imposes no status constraint.
func FilterTasks(tasks []models.Task, term, status string) []models.Task {
	q := strings.ToLower(term)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(strings.ToLower(t.Client.Name), q) {
			continue
		}
		if status != "" && status != "all" && t.StatusOrDefault() != status {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Stats are the dashboard summary tiles.
type Stats struct {
	ActiveClients  int `json:"active_clients"`
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
}

// ComputeStats derives the dashboard counters from the fetched collections.
// The task counters are a snapshot over whatever slice the dashboard fetched
// (the ten most recent), not a global total; keep passing the same sample the
// view renders.
func ComputeStats(clients []models.Client, tasks []models.Task) Stats {
	st := Stats{TotalTasks: len(tasks)}
	for _, c := range clients {
		if c.IsActive() {
			st.ActiveClients++
		}
	}
	for _, t := range tasks {
		if t.IsCompleted() {
			st.CompletedTasks++
		}
	}
	st.PendingTasks = st.TotalTasks - st.CompletedTasks
	return st
}

// CompletedCount counts completed tasks in a slice; the client detail sidebar
// uses it for its quick stats.
func CompletedCount(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		if t.IsCompleted() {
			n++
		}
	}
	return n
}

// InProgressCount counts in-progress tasks in a slice.
func InProgressCount(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == models.TaskStatusInProgress {
			n++
		}
	}
	return n
}
