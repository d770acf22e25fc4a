package api

import (
	"net/http"
	"strings"

	"github.com/example/crm-ledger/internal/api/middleware"
	"github.com/example/crm-ledger/internal/auth"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService) http.Handler {
	mux := http.NewServeMux()
	protect := middleware.AuthMiddleware(jwtService)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Auth
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		authHandlers.Login(w, r)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		authHandlers.Refresh(w, r)
	})
	mux.Handle("/me", protect(http.HandlerFunc(authHandlers.Me)))

	// Clients
	mux.Handle("/clients", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetClients(w, r)
		case http.MethodPost:
			handlers.CreateClient(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/clients/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/history") && r.Method == http.MethodGet:
			handlers.GetClientHistory(w, r)
		case r.Method == http.MethodGet:
			handlers.GetClient(w, r)
		case r.Method == http.MethodPatch, r.Method == http.MethodPut:
			handlers.UpdateClient(w, r)
		case r.Method == http.MethodDelete:
			handlers.DeleteClient(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Activities
	mux.Handle("/activities", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetActivities(w, r)
		case http.MethodPost:
			handlers.CreateActivity(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/activities/", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/history") && r.Method == http.MethodGet:
			handlers.GetActivityHistory(w, r)
		case r.Method == http.MethodGet:
			handlers.GetActivity(w, r)
		case r.Method == http.MethodPatch, r.Method == http.MethodPut:
			handlers.UpdateActivity(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Dashboard
	mux.Handle("/dashboard/kpis", protect(http.HandlerFunc(handlers.GetDashboardKPIs)))

	// Notifications
	mux.Handle("/notifications", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.GetNotifications(w, r)
	})))

	// Team
	mux.Handle("/team", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.GetTeam(w, r)
	})))

	return withLogging(mux)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		println("[API]", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
