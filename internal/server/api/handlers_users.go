package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/server/directory"
	"github.com/dkravets/adminboard/internal/server/services"
	"github.com/gorilla/mux"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 10
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeDetail(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	page, err := a.users.List(r.Context(), limit, q.Get("last_uid"), q.Get("status"))
	if err != nil {
		a.logger.Error(r.Context(), "user listing failed", "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (a *API) handleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	page, err := a.users.GetByEmail(r.Context(), email)
	if err != nil {
		a.logger.Error(r.Context(), "user lookup failed", "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	uid, err := a.users.Create(r.Context(), directory.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		a.logger.Error(r.Context(), "user creation failed", "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"uid": uid})
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	var update services.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.users.Update(r.Context(), uid, update)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		a.logger.Error(r.Context(), "user update failed", "uid", uid, "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	if err := a.users.Delete(r.Context(), uid); err != nil {
		a.logger.Error(r.Context(), "user deletion failed", "uid", uid, "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (a *API) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	a.setUserStatus(w, r, a.users.Approve, "User approved")
}

func (a *API) handleHoldUser(w http.ResponseWriter, r *http.Request) {
	a.setUserStatus(w, r, a.users.Hold, "User put on hold")
}

func (a *API) setUserStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, uid string) error, okMsg string) {
	uid := mux.Vars(r)["uid"]

	if err := op(r.Context(), uid); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		a.logger.Error(r.Context(), "user status change failed", "uid", uid, "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": okMsg})
}

func (a *API) handleUserResetLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := a.users.SendPasswordResetLink(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		a.logger.Error(r.Context(), "user reset link failed", "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent"})
}
