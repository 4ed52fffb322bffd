package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/cm-taskflow/TF/internal/httpx"
	"github.com/cm-taskflow/TF/internal/middleware"
	"github.com/cm-taskflow/TF/internal/models"
	"github.com/cm-taskflow/TF/internal/services"
	"github.com/cm-taskflow/TF/internal/validation"
	"github.com/cm-taskflow/TF/internal/view"
)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

// List: GET /clients – full collection newest first, with the search filter
// applied in memory so the predicate matches the detail the search box promises
// (name OR VAT number OR director email, case-insensitive).
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var clients []models.Client
	if err := h.DB.WithContext(r.Context()).Order("created_at DESC").Find(&clients).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		_ = view.Render(w, r, "clients/index.html", map[string]any{"Error": err.Error(), "Query": q})
		return
	}
	filtered := services.FilterClients(clients, q)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": filtered, "total": len(filtered)})
		return
	}
	_ = view.Render(w, r, "clients/index.html", map[string]any{
		"Clients": filtered,
		"Query":   q,
	})
}

// New: GET /clients/new – empty form with the documented field defaults.
func (h *ClientHandler) New(w http.ResponseWriter, r *http.Request) {
	_ = view.Render(w, r, "clients/form.html", map[string]any{
		"Client": defaultClient(),
	})
}

func defaultClient() models.Client {
	return models.Client{
		Language:      "NL",
		Status:        models.ClientStatusActive,
		RiskProfile:   "normal",
		ClientType:    "company",
		BillingMethod: "fixed",
	}
}

// clientFromForm copies the submitted edit buffer onto c. Empty classification
// values fall back to their defaults so a partial form never persists blanks.
func clientFromForm(r *http.Request, c *models.Client) {
	c.Name = strings.TrimSpace(r.FormValue("name"))
	c.LegalForm = strings.TrimSpace(r.FormValue("legal_form"))
	c.VATNumber = strings.TrimSpace(r.FormValue("vat_number"))
	c.FiscalYearEnd = strings.TrimSpace(r.FormValue("fiscal_year_end"))
	c.DirectorName = strings.TrimSpace(r.FormValue("director_name"))
	c.DirectorEmail = strings.TrimSpace(r.FormValue("director_email"))
	c.DirectorPhone = strings.TrimSpace(r.FormValue("director_phone"))
	c.Language = formOr(r, "language", "NL")
	c.Status = formOr(r, "status", models.ClientStatusActive)
	c.RiskProfile = formOr(r, "risk_profile", "normal")
	c.ClientType = formOr(r, "client_type", "company")
	c.BillingMethod = formOr(r, "billing_method", "fixed")
	c.Notes = r.FormValue("notes")
	c.Website = strings.TrimSpace(r.FormValue("website"))
	c.Sector = strings.TrimSpace(r.FormValue("sector"))
	c.NACECode = strings.TrimSpace(r.FormValue("nace_code"))
	c.BankAccount = strings.TrimSpace(r.FormValue("bank_account"))
	c.TaxRegime = strings.TrimSpace(r.FormValue("tax_regime"))
}

func formOr(r *http.Request, field, def string) string {
	if v := strings.TrimSpace(r.FormValue(field)); v != "" {
		return v
	}
	return def
}

func validateClient(c *models.Client) validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	validation.Required("legal_form", c.LegalForm, v)
	validation.Required("vat_number", c.VATNumber, v)
	validation.Required("fiscal_year_end", c.FiscalYearEnd, v)
	validation.Required("director_name", c.DirectorName, v)
	validation.Required("director_email", c.DirectorEmail, v)
	validation.Email("director_email", c.DirectorEmail, v)
	validation.OneOf("language", c.Language, models.ClientLanguages, v)
	validation.OneOf("status", c.Status, models.ClientStatuses, v)
	validation.OneOf("risk_profile", c.RiskProfile, models.ClientRiskProfiles, v)
	validation.OneOf("client_type", c.ClientType, models.ClientTypes, v)
	validation.OneOf("billing_method", c.BillingMethod, models.ClientBillingMethods, v)
	return v
}

// Create: POST /clients – insert; the edit buffer is preserved on failure.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	var client models.Client
	clientFromForm(r, &client)

	if v := validateClient(&client); !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = view.Render(w, r, "clients/form.html", map[string]any{"Client": client, "Errors": v})
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(&client).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_ = view.Render(w, r, "clients/form.html", map[string]any{"Client": client, "Error": err.Error()})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, client)
		return
	}
	middleware.Flash(w, r, "flash.saved")
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

// View: GET /clients/{id} – client plus its tasks newest first. A missing row
// and a fetch failure collapse into the same error state.
func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var client models.Client
	if err := h.DB.WithContext(r.Context()).First(&client, "id = ?", id).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}
	var tasks []models.Task
	if err := h.DB.WithContext(r.Context()).Where("client_id = ?", client.ID).
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"client": client, "tasks": tasks})
		return
	}
	recent := tasks
	if len(recent) > 5 {
		recent = recent[:5]
	}
	_ = view.Render(w, r, "clients/view.html", map[string]any{
		"Client":     client,
		"Tasks":      tasks,
		"Recent":     recent,
		"Completed":  services.CompletedCount(tasks),
		"InProgress": services.InProgressCount(tasks),
	})
}

func (h *ClientHandler) renderNotFound(w http.ResponseWriter, r *http.Request, err error) {
	msg := err.Error()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		msg = "Client not found"
	}
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, msg, nil)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_ = view.Render(w, r, "error.html", map[string]any{"Message": msg, "BackURL": "/clients"})
}

// Edit: GET /clients/{id}/edit – existing row as the initial edit buffer.
func (h *ClientHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var client models.Client
	if err := h.DB.WithContext(r.Context()).First(&client, "id = ?", id).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}
	_ = view.Render(w, r, "clients/form.html", map[string]any{"Client": client, "IsEdit": true})
}

// Update: POST /clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var client models.Client
	if err := h.DB.WithContext(r.Context()).First(&client, "id = ?", id).Error; err != nil {
		h.renderNotFound(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	clientFromForm(r, &client)

	if v := validateClient(&client); !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = view.Render(w, r, "clients/form.html", map[string]any{"Client": client, "Errors": v, "IsEdit": true})
		return
	}
	if err := h.DB.WithContext(r.Context()).Save(&client).Error; err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_ = view.Render(w, r, "clients/form.html", map[string]any{"Client": client, "Error": err.Error(), "IsEdit": true})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, client)
		return
	}
	middleware.Flash(w, r, "flash.saved")
	http.Redirect(w, r, "/clients/"+id, http.StatusSeeOther)
}
