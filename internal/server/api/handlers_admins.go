package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/server/models"
	"github.com/gorilla/mux"
)

func (a *API) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := a.admins.List(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(admins) == 0 {
		writeDetail(w, http.StatusNotFound, "No admins found")
		return
	}

	out := make([]adminResponse, 0, len(admins))
	for _, admin := range admins {
		out = append(out, toAdminResponse(admin))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := a.admins.Create(r.Context(), req.Email, models.Role(req.Role))
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			writeDetail(w, http.StatusBadRequest, "Admin already exists")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toAdminResponse(admin))
}

func (a *API) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	if err := a.admins.Delete(r.Context(), email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Admin not found")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Admin deleted"})
}
