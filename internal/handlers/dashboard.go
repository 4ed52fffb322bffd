package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/cm-taskflow/TF/internal/httpx"
	"github.com/cm-taskflow/TF/internal/models"
	"github.com/cm-taskflow/TF/internal/services"
	"github.com/cm-taskflow/TF/internal/view"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

// Home: GET / – all clients plus the 10 newest tasks. The task counters are
// computed over that 10-task window, not over the whole table.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var clients []models.Client
	if err := h.DB.WithContext(r.Context()).Order("created_at DESC").Find(&clients).Error; err != nil {
		h.renderError(w, r, err)
		return
	}
	var tasks []models.Task
	if err := h.DB.WithContext(r.Context()).Preload("Client").
		Order("created_at DESC").Limit(10).Find(&tasks).Error; err != nil {
		h.renderError(w, r, err)
		return
	}

	stats := services.ComputeStats(clients, tasks)
	filtered := services.FilterClients(clients, q)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"stats":   stats,
			"clients": filtered,
			"tasks":   tasks,
		})
		return
	}
	_ = view.Render(w, r, "dashboard.html", map[string]any{
		"Stats":   stats,
		"Clients": filtered,
		"Tasks":   tasks,
		"Query":   q,
	})
}

func (h *DashboardHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = view.Render(w, r, "error.html", map[string]any{"Message": err.Error(), "BackURL": "/"})
}
