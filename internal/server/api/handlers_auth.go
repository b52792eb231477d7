package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/server/models"
)

// adminResponse is the public view of an admin account. Password hash and
// bound session token never leave the server.
type adminResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toAdminResponse(a *models.Admin) adminResponse {
	return adminResponse{
		ID:        a.ID,
		Email:     a.Email,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		a.logger.Error(r.Context(), "login failed", "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	admin, ok := principalFrom(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}
	writeJSON(w, http.StatusOK, toAdminResponse(admin))
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	admin, ok := principalFrom(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}
	if err := a.auth.Logout(r.Context(), admin.Email); err != nil {
		a.logger.Error(r.Context(), "logout failed", "email", admin.Email, "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := a.auth.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			writeDetail(w, http.StatusBadRequest, "Invalid token")
		case errors.Is(err, common.ErrNotFound):
			writeDetail(w, http.StatusNotFound, "Admin not found")
		default:
			a.logger.Error(r.Context(), "password reset failed", "error", err.Error())
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toAdminResponse(admin))
}

func (a *API) handleResetPasswordRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Admin not found")
			return
		}
		a.logger.Error(r.Context(), "reset request failed", "email", req.Email, "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent"})
}
