package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cm-taskflow/TF/internal/models"
)

func taskForm(clientID, title string) url.Values {
	return url.Values{
		"client_id": {clientID},
		"title":     {title},
	}
}

func TestTaskCreateRedirects(t *testing.T) {
	db := setupTestDB(t)
	h := NewTaskHandler(db)

	c := models.Client{Name: "Acme BV", LegalForm: "BV", VATNumber: "BE0111111111", FiscalYearEnd: "2026-12-31", DirectorName: "A", DirectorEmail: "a@acme.be", Status: "active"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Plain creation lands on the task list.
	w := postForm(h.Create, "/tasks", taskForm("1", "File VAT return"))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/tasks" {
		t.Fatalf("expected 303 to /tasks, got %d %s", w.Code, w.Header().Get("Location"))
	}

	// Creation that originated from a client page goes back to that client.
	form := taskForm("1", "Annual accounts")
	form.Set("from_client", "1")
	w2 := postForm(h.Create, "/tasks", form)
	if w2.Code != http.StatusSeeOther || w2.Header().Get("Location") != "/clients/1" {
		t.Fatalf("expected 303 to /clients/1, got %d %s", w2.Code, w2.Header().Get("Location"))
	}
}

func TestTaskCreateBlankHoursStayNull(t *testing.T) {
	db := setupTestDB(t)
	h := NewTaskHandler(db)

	c := models.Client{Name: "Acme BV", LegalForm: "BV", VATNumber: "BE0111111111", FiscalYearEnd: "2026-12-31", DirectorName: "A", DirectorEmail: "a@acme.be", Status: "active"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	form := taskForm("1", "File VAT return")
	form.Set("estimated_hours", "")
	form.Set("actual_hours", "0")
	form.Set("price", "12.5")
	if w := postForm(h.Create, "/tasks", form); w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d body=%s", w.Code, w.Body.String())
	}

	var task models.Task
	if err := db.First(&task).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if task.EstimatedHours != nil {
		t.Fatalf("blank estimated_hours should persist as NULL, got %v", *task.EstimatedHours)
	}
	if task.ActualHours != nil {
		t.Fatalf("zero actual_hours should persist as NULL, got %v", *task.ActualHours)
	}
	if task.Price == nil || *task.Price != 12.5 {
		t.Fatalf("price not persisted: %v", task.Price)
	}
	if task.Status != models.TaskStatusNew || task.Priority != "medium" {
		t.Fatalf("defaults not applied: %s/%s", task.Status, task.Priority)
	}
}

func TestTaskCreateRequiresClient(t *testing.T) {
	db := setupTestDB(t)
	h := NewTaskHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(taskForm("", "Orphan").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", w.Code)
	}
	var payload struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Details["client_id"] == "" {
		t.Fatalf("expected client_id violation, got %+v", payload.Details)
	}
}

func statusPost(h *TaskHandler, id, status string) *httptest.ResponseRecorder {
	form := url.Values{"status": {status}}
	req := httptest.NewRequest(http.MethodPost, "/tasks/"+id+"/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	h.UpdateStatus(w, req)
	return w
}

func TestTaskStatusCompletionStampsOnce(t *testing.T) {
	db := setupTestDB(t)
	h := NewTaskHandler(db)

	c := models.Client{Name: "Acme BV", LegalForm: "BV", VATNumber: "BE0111111111", FiscalYearEnd: "2026-12-31", DirectorName: "A", DirectorEmail: "a@acme.be"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	task := models.Task{ClientID: c.ID, Title: "File VAT return", Status: models.TaskStatusNew}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	if w := statusPost(h, "1", "completed"); w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var after models.Task
	if err := db.First(&after, task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != models.TaskStatusCompleted || after.CompletedAt == nil {
		t.Fatalf("first completion should stamp completed_at: %+v", after)
	}
	first := *after.CompletedAt

	// Reopening keeps the original completion timestamp.
	if w := statusPost(h, "1", "in-progress"); w.Code != http.StatusOK {
		t.Fatalf("reopen: expected 200 got %d", w.Code)
	}
	if err := db.First(&after, task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != models.TaskStatusInProgress {
		t.Fatalf("reopen did not change status: %s", after.Status)
	}
	if after.CompletedAt == nil || !after.CompletedAt.Equal(first) {
		t.Fatalf("reopen must not touch completed_at: %v vs %v", after.CompletedAt, first)
	}

	// Re-completing keeps the original timestamp too.
	time.Sleep(10 * time.Millisecond)
	if w := statusPost(h, "1", "completed"); w.Code != http.StatusOK {
		t.Fatalf("recomplete: expected 200 got %d", w.Code)
	}
	if err := db.First(&after, task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.CompletedAt == nil || !after.CompletedAt.Equal(first) {
		t.Fatalf("recompletion must keep the first timestamp: %v vs %v", after.CompletedAt, first)
	}
}

func TestTaskStatusUnknownRejected(t *testing.T) {
	db := setupTestDB(t)
	h := NewTaskHandler(db)

	c := models.Client{Name: "Acme BV", LegalForm: "BV", VATNumber: "BE0111111111", FiscalYearEnd: "2026-12-31", DirectorName: "A", DirectorEmail: "a@acme.be"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	task := models.Task{ClientID: c.ID, Title: "File VAT return", Status: models.TaskStatusNew}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	if w := statusPost(h, "1", "archived"); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", w.Code)
	}
	var after models.Task
	if err := db.First(&after, task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != models.TaskStatusNew {
		t.Fatalf("rejected transition must leave the row untouched: %s", after.Status)
	}
}

func TestTaskListFilters(t *testing.T) {
	db := setupTestDB(t)
	h := NewTaskHandler(db)

	acme := models.Client{Name: "Acme BV", LegalForm: "BV", VATNumber: "BE0111111111", FiscalYearEnd: "2026-12-31", DirectorName: "A", DirectorEmail: "a@acme.be"}
	lum := models.Client{Name: "Lumière SPRL", LegalForm: "SPRL", VATNumber: "BE0222222222", FiscalYearEnd: "2026-12-31", DirectorName: "B", DirectorEmail: "b@lumiere.be"}
	for _, c := range []*models.Client{&acme, &lum} {
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	tasks := []models.Task{
		{ClientID: acme.ID, Title: "File VAT return", Status: "new"},
		{ClientID: acme.ID, Title: "Annual accounts", Status: "completed"},
		{ClientID: lum.ID, Title: "Payroll review", Status: "completed"},
	}
	for i := range tasks {
		if err := db.Create(&tasks[i]).Error; err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	list := func(target string) []models.Task {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		h.List(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", w.Code)
		}
		var payload struct {
			Items []models.Task `json:"items"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return payload.Items
	}

	if got := list("/tasks"); len(got) != 3 {
		t.Fatalf("expected all 3 tasks, got %d", len(got))
	}
	if got := list("/tasks?status=completed"); len(got) != 2 {
		t.Fatalf("expected 2 completed tasks, got %d", len(got))
	}
	// Search term matches the joined client name.
	got := list("/tasks?q=lumi%C3%A8re&status=all")
	if len(got) != 1 || got[0].Title != "Payroll review" {
		t.Fatalf("client-name search failed: %+v", got)
	}
	// Server-side client scoping.
	if got := list("/tasks?client_id=1"); len(got) != 2 {
		t.Fatalf("expected 2 tasks for client 1, got %d", len(got))
	}
}
