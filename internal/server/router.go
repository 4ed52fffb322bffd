package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/cm-taskflow/TF/internal/auth"
	"github.com/cm-taskflow/TF/internal/handlers"
	"github.com/cm-taskflow/TF/internal/httpx"
	"github.com/cm-taskflow/TF/internal/middleware"
	"github.com/cm-taskflow/TF/internal/models"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check; detailed errors stay out of the body.
		if err := db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Static assets
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Auth endpoints
	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("GET /login", ah.LoginForm)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("GET /signup", ah.SignupForm)
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /logout", ah.Logout)

	secured := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	// Dashboard
	dh := handlers.NewDashboardHandler(db)
	mux.Handle("GET /{$}", secured(dh.Home))

	// Client endpoints
	ch := handlers.NewClientHandler(db)
	mux.Handle("GET /clients", secured(ch.List))
	mux.Handle("POST /clients", secured(ch.Create))
	mux.Handle("GET /clients/new", secured(ch.New))
	mux.Handle("GET /clients/{id}", secured(ch.View))
	mux.Handle("GET /clients/{id}/edit", secured(ch.Edit))
	mux.Handle("POST /clients/{id}", secured(ch.Update))

	// Task endpoints
	th := handlers.NewTaskHandler(db)
	mux.Handle("GET /tasks", secured(th.List))
	mux.Handle("POST /tasks", secured(th.Create))
	mux.Handle("GET /tasks/new", secured(th.New))
	mux.Handle("GET /tasks/{id}", secured(th.View))
	mux.Handle("GET /tasks/{id}/edit", secured(th.Edit))
	mux.Handle("POST /tasks/{id}", secured(th.Update))
	mux.Handle("POST /tasks/{id}/status", secured(th.UpdateStatus))

	return middleware.Prefs(auth.Middleware(withRecover(withLogging(mux))))
}

// Simple middleware logging & recovery kept private to this package to avoid duplication.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
