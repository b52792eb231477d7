package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/server/models"
	"github.com/google/uuid"
)

type ctxKey int

const principalKey ctxKey = iota

func withPrincipal(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, principalKey, admin)
}

// principalFrom returns the admin attached by the authentication gate.
func principalFrom(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(principalKey).(*models.Admin)
	return admin, ok
}

// authGate is the per-request authentication middleware. Every route passes
// through it except CORS preflights and the exact paths on the allow list.
// On success the resolved admin rides on the request context; handlers never
// trust token claims directly.
func (a *API) authGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if _, open := a.allowed[r.URL.Path]; open {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		admin, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
				writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			case errors.Is(err, common.ErrNotFound):
				writeDetail(w, http.StatusNotFound, "Admin not found")
			case errors.Is(err, common.ErrSessionRevoked):
				writeDetail(w, http.StatusUnauthorized, "Session expired or invalid")
			default:
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), admin)))
	})
}

// requireSuperAdmin guards management endpoints. The gate runs first, so a
// missing principal here means the route was misconfigured onto the allow
// list; it is reported as a plain 401 rather than a 500.
func (a *API) requireSuperAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := principalFrom(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized access")
			return
		}
		if admin.Role != models.RoleSuperAdmin {
			writeDetail(w, http.StatusForbidden, "Access denied. Superadmin privileges required.")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request with a generated request id.
func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		a.logger.Info(r.Context(), "request",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
