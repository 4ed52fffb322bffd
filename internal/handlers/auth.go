package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cm-taskflow/TF/internal/auth"
	"github.com/cm-taskflow/TF/internal/httpx"
	"github.com/cm-taskflow/TF/internal/models"
	"github.com/cm-taskflow/TF/internal/validation"
	"github.com/cm-taskflow/TF/internal/view"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

// LoginForm: GET /login. An already authenticated browser is sent straight to
// the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_ = view.Render(w, r, "login.html", map[string]any{})
}

// Login: POST /login – verify credentials and set the session cookie. The
// error message never says which of email/password was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	fail := func() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = view.Render(w, r, "login.html", map[string]any{"Error": "Invalid email or password", "Email": email})
	}

	var user models.User
	if err := h.DB.WithContext(r.Context()).First(&user, "email = ?", email).Error; err != nil {
		fail()
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		fail()
		return
	}
	auth.CreateSession(w, user.ID)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, user)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SignupForm: GET /signup
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_ = view.Render(w, r, "signup.html", map[string]any{})
}

// Signup: POST /signup – create the account and log it in immediately.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	v := make(validation.Violations)
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("name", name, v)
	if len(password) < 8 {
		v["password"] = "must be at least 8 characters"
	}
	rerender := func(code int, data map[string]any) {
		data["Email"] = email
		data["Name"] = name
		w.WriteHeader(code)
		_ = view.Render(w, r, "signup.html", data)
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
			return
		}
		rerender(http.StatusUnprocessableEntity, map[string]any{"Errors": v})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "hash_error", nil)
		return
	}
	user := models.User{Email: email, Name: name, Password: string(hash)}
	if err := h.DB.WithContext(r.Context()).Create(&user).Error; err != nil {
		msg := err.Error()
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(msg), "unique") {
			msg = "An account with that email already exists"
		}
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusConflict, msg, nil)
			return
		}
		rerender(http.StatusConflict, map[string]any{"Error": msg})
		return
	}
	auth.CreateSession(w, user.ID)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, user)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout: POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
