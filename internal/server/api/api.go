// Package api is the HTTP surface of the adminboard server: the router,
// the authentication gate, and the request handlers.
package api

import (
	"net/http"

	"github.com/dkravets/adminboard/internal/logging"
	"github.com/dkravets/adminboard/internal/server/config"
	"github.com/dkravets/adminboard/internal/server/services"
	"github.com/gorilla/mux"
)

type API struct {
	auth        *services.AuthService
	admins      *services.AdminService
	users       *services.UserService
	logger      logging.Logger
	allowed     map[string]struct{}
	environment string
}

func New(auth *services.AuthService, admins *services.AdminService, users *services.UserService, l logging.Logger, cfg *config.Config) *API {
	allowed := make(map[string]struct{}, len(cfg.AllowedPaths))
	for _, p := range cfg.AllowedPaths {
		allowed[p] = struct{}{}
	}
	return &API{
		auth:        auth,
		admins:      admins,
		users:       users,
		logger:      l.With("module", "api"),
		allowed:     allowed,
		environment: cfg.Environment,
	}
}

// Router wires all routes. The gate middleware wraps everything; handlers
// behind it can rely on a principal being present on the context.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.requestLogger, a.authGate)

	r.HandleFunc("/", a.handleRoot).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/auth/login", a.handleLogin).Methods("POST")
	v1.HandleFunc("/auth/me", a.handleMe).Methods("GET")
	v1.HandleFunc("/auth/logout", a.handleLogout).Methods("POST")
	v1.HandleFunc("/auth/reset-password", a.handleResetPassword).Methods("POST")
	v1.HandleFunc("/auth/reset-password/request", a.handleResetPasswordRequest).Methods("POST")

	v1.HandleFunc("/admin", a.requireSuperAdmin(a.handleListAdmins)).Methods("GET")
	v1.HandleFunc("/admin", a.requireSuperAdmin(a.handleCreateAdmin)).Methods("POST")
	v1.HandleFunc("/admin/{email}", a.requireSuperAdmin(a.handleDeleteAdmin)).Methods("DELETE")

	v1.HandleFunc("/users", a.handleListUsers).Methods("GET")
	v1.HandleFunc("/users", a.handleCreateUser).Methods("POST")
	v1.HandleFunc("/users/by-email/{email}", a.handleGetUserByEmail).Methods("GET")
	v1.HandleFunc("/users/reset-password-link", a.handleUserResetLink).Methods("POST")
	v1.HandleFunc("/users/{uid}", a.handleUpdateUser).Methods("PATCH")
	v1.HandleFunc("/users/{uid}", a.handleDeleteUser).Methods("DELETE")
	v1.HandleFunc("/users/{uid}/approve", a.handleApproveUser).Methods("POST")
	v1.HandleFunc("/users/{uid}/hold", a.handleHoldUser).Methods("POST")

	return r
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "API is running!",
		"environment": a.environment,
	})
}
