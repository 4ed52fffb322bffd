package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cm-taskflow/TF/internal/httpx"
	"github.com/cm-taskflow/TF/internal/middleware"
	"github.com/cm-taskflow/TF/internal/models"
	"github.com/cm-taskflow/TF/internal/services"
	"github.com/cm-taskflow/TF/internal/validation"
	"github.com/cm-taskflow/TF/internal/view"
)

type TaskHandler struct {
	DB  *gorm.DB
	svc *services.TaskService
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{DB: db, svc: services.NewTaskService()}
}

// List: GET /tasks – tasks newest first with their client joined. An optional
// client_id narrows the fetch; the q/status filters run in memory over the
// fetched set so search also matches the joined client name.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "all"
	}
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))

	tx := h.DB.WithContext(r.Context()).Preload("Client").Order("created_at DESC")
	if clientID != "" {
		tx = tx.Where("client_id = ?", clientID)
	}
	var tasks []models.Task
	if err := tx.Find(&tasks).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		_ = view.Render(w, r, "tasks/index.html", map[string]any{"Error": err.Error(), "Query": q, "Status": status})
		return
	}
	filtered := services.FilterTasks(tasks, q, status)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": filtered, "total": len(filtered)})
		return
	}
	_ = view.Render(w, r, "tasks/index.html", map[string]any{
		"Tasks":    filtered,
		"Query":    q,
		"Status":   status,
		"Statuses": models.TaskStatuses,
		"ClientID": clientID,
	})
}

// New: GET /tasks/new – empty form. A client_id query parameter preselects the
// client (the "add task from client page" flow) and is carried through the
// form so Create can redirect back to that client.
func (h *TaskHandler) New(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))

	task := models.Task{Status: models.TaskStatusNew, Priority: "medium"}
	clients, err := h.activeClients(r)
	if err != nil {
		_ = view.Render(w, r, "tasks/form.html", map[string]any{
			"Error": err.Error(), "Task": task,
			"Statuses": models.TaskStatuses, "Priorities": models.TaskPriorities,
		})
		return
	}
	if clientID != "" {
		if id, perr := strconv.ParseUint(clientID, 10, 64); perr == nil {
			task.ClientID = uint(id)
		}
	}
	_ = view.Render(w, r, "tasks/form.html", map[string]any{
		"Task":       task,
		"Clients":    clients,
		"FromClient": clientID,
		"Statuses":   models.TaskStatuses,
		"Priorities": models.TaskPriorities,
	})
}

func (h *TaskHandler) activeClients(r *http.Request) ([]models.Client, error) {
	var clients []models.Client
	err := h.DB.WithContext(r.Context()).
		Where("status = ?", models.ClientStatusActive).
		Order("name ASC").Find(&clients).Error
	return clients, err
}

// parseHours maps form input to the nullable effort columns. Blank and zero
// both persist as NULL, never as 0.
func parseHours(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if f == 0 {
		return nil, nil
	}
	return &f, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func taskFromForm(r *http.Request, t *models.Task) validation.Violations {
	v := make(validation.Violations)

	t.Title = strings.TrimSpace(r.FormValue("title"))
	t.Description = r.FormValue("description")
	t.Status = formOr(r, "status", models.TaskStatusNew)
	t.Priority = formOr(r, "priority", "medium")
	t.AssignedTo = strings.TrimSpace(r.FormValue("assigned_to"))
	t.Category = strings.TrimSpace(r.FormValue("category"))
	t.Recurrence = strings.TrimSpace(r.FormValue("recurrence"))

	validation.Required("title", t.Title, v)
	validation.OneOf("status", t.Status, models.TaskStatuses, v)
	validation.OneOf("priority", t.Priority, models.TaskPriorities, v)

	if raw := strings.TrimSpace(r.FormValue("client_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			v["client_id"] = "must be a client id"
		} else {
			t.ClientID = uint(id)
		}
	}
	if t.ClientID == 0 {
		v["client_id"] = "required"
	}

	var err error
	if t.DueDate, err = parseDate(r.FormValue("due_date")); err != nil {
		v["due_date"] = "must be YYYY-MM-DD"
	}
	if t.EstimatedHours, err = parseHours(r.FormValue("estimated_hours")); err != nil {
		v["estimated_hours"] = "must be a number"
	}
	if t.ActualHours, err = parseHours(r.FormValue("actual_hours")); err != nil {
		v["actual_hours"] = "must be a number"
	}
	if t.Price, err = parseHours(r.FormValue("price")); err != nil {
		v["price"] = "must be a number"
	}
	validation.NonNegativeFloat("estimated_hours", t.EstimatedHours, v)
	validation.NonNegativeFloat("actual_hours", t.ActualHours, v)
	validation.NonNegativeFloat("price", t.Price, v)
	return v
}

// Create: POST /tasks – insert. When the form originated from a client page
// the browser is sent back to that client, otherwise to the task list.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	var task models.Task
	violations := taskFromForm(r, &task)
	fromClient := strings.TrimSpace(r.FormValue("from_client"))

	rerender := func(code int, data map[string]any) {
		clients, _ := h.activeClients(r)
		data["Task"] = task
		data["Clients"] = clients
		data["FromClient"] = fromClient
		data["Statuses"] = models.TaskStatuses
		data["Priorities"] = models.TaskPriorities
		w.WriteHeader(code)
		_ = view.Render(w, r, "tasks/form.html", data)
	}

	if !violations.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", violations)
			return
		}
		rerender(http.StatusUnprocessableEntity, map[string]any{"Errors": violations})
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(&task).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		rerender(http.StatusInternalServerError, map[string]any{"Error": err.Error()})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, task)
		return
	}
	middleware.Flash(w, r, "flash.saved")
	if fromClient != "" {
		http.Redirect(w, r, "/clients/"+fromClient, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// View: GET /tasks/{id} – task with its client joined. A missing row and a
// fetch failure collapse into the same error state.
func (h *TaskHandler) View(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var task models.Task
	if err := h.DB.WithContext(r.Context()).Preload("Client").First(&task, "id = ?", id).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"task": task, "client": task.Client.Ref()})
		return
	}
	_ = view.Render(w, r, "tasks/view.html", map[string]any{
		"Task":     task,
		"Client":   task.Client,
		"Variance": task.Variance(),
		"Statuses": models.TaskStatuses,
	})
}

func (h *TaskHandler) renderNotFound(w http.ResponseWriter, r *http.Request, err error) {
	msg := err.Error()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		msg = "Task not found"
	}
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, msg, nil)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_ = view.Render(w, r, "error.html", map[string]any{"Message": msg, "BackURL": "/tasks"})
}

// Edit: GET /tasks/{id}/edit
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var task models.Task
	if err := h.DB.WithContext(r.Context()).First(&task, "id = ?", id).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}
	clients, _ := h.activeClients(r)
	_ = view.Render(w, r, "tasks/form.html", map[string]any{
		"Task":       task,
		"Clients":    clients,
		"IsEdit":     true,
		"Statuses":   models.TaskStatuses,
		"Priorities": models.TaskPriorities,
	})
}

// Update: POST /tasks/{id} – full edit. Completion timestamps are handled by
// UpdateStatus; a plain edit that changes status goes through the same patch
// rule so the two paths cannot disagree.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var task models.Task
	if err := h.DB.WithContext(r.Context()).First(&task, "id = ?", id).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	prev := task
	violations := taskFromForm(r, &task)
	if !violations.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", violations)
			return
		}
		clients, _ := h.activeClients(r)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = view.Render(w, r, "tasks/form.html", map[string]any{
			"Task": task, "Clients": clients, "Errors": violations, "IsEdit": true,
			"Statuses": models.TaskStatuses, "Priorities": models.TaskPriorities,
		})
		return
	}
	if task.Status != prev.Status {
		patch := h.svc.StatusPatch(&prev, task.Status, time.Now().UTC())
		if at, ok := patch["completed_at"]; ok {
			stamped := at.(time.Time)
			task.CompletedAt = &stamped
		}
	}
	if err := h.DB.WithContext(r.Context()).Save(&task).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		clients, _ := h.activeClients(r)
		w.WriteHeader(http.StatusInternalServerError)
		_ = view.Render(w, r, "tasks/form.html", map[string]any{
			"Task": task, "Clients": clients, "Error": err.Error(), "IsEdit": true,
			"Statuses": models.TaskStatuses, "Priorities": models.TaskPriorities,
		})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, task)
		return
	}
	middleware.Flash(w, r, "flash.saved")
	http.Redirect(w, r, "/tasks/"+id, http.StatusSeeOther)
}

// UpdateStatus: POST /tasks/{id}/status – targeted transition. Only the status
// column, and completed_at on the first completion, are written; everything
// else on the row is left alone. On failure the stored row is untouched.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var task models.Task
	if err := h.DB.WithContext(r.Context()).First(&task, "id = ?", id).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	newStatus := r.FormValue("status")
	if !contains(models.TaskStatuses, newStatus) {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown status %q", newStatus), nil)
			return
		}
		http.Redirect(w, r, "/tasks/"+id, http.StatusSeeOther)
		return
	}

	patch := h.svc.StatusPatch(&task, newStatus, time.Now().UTC())
	if err := h.DB.WithContext(r.Context()).Model(&task).Updates(patch).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_ = view.Render(w, r, "error.html", map[string]any{"Message": err.Error(), "BackURL": "/tasks/" + id})
		return
	}
	h.svc.ApplyStatusPatch(&task, patch)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, task)
		return
	}
	http.Redirect(w, r, "/tasks/"+id, http.StatusSeeOther)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
