package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"chatstore/pkg/logger"
	"chatstore/pkg/models"
	"chatstore/pkg/store"
	"chatstore/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterDirectory registers the backend-only seeding endpoints for the
// externally owned user/member directory.
func RegisterDirectory(r *mux.Router) {
	r.HandleFunc("/users", upsertUser).Methods(http.MethodPost)
	r.HandleFunc("/members", upsertMember).Methods(http.MethodPost)
}

// isBackend checks if the request is from a backend or admin key.
func isBackend(r *http.Request) bool {
	role := r.Header.Get("X-Role-Name")
	return role == "backend" || role == "admin"
}

// upsertUser handles POST /users. An explicit id overwrites the existing
// row; otherwise a fresh id is minted.
func upsertUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !isBackend(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if u.Name == "" {
		utils.JSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if u.ID == "" {
		u.ID = utils.GenUserID()
	}
	if u.CreatedTS == 0 {
		u.CreatedTS = time.Now().UTC().UnixNano()
	}
	if err := store.SaveUser(u); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("user_saved", "id", u.ID)
	_ = utils.JSONWrite(w, http.StatusCreated, u)
}

// upsertMember handles POST /members. A (workspace, user) pair maps to at
// most one member, so re-posting the same pair returns the existing row.
func upsertMember(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !isBackend(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	var m models.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if m.WorkspaceID == "" || m.UserID == "" {
		utils.JSONError(w, http.StatusBadRequest, "workspace_id and user_id are required")
		return
	}
	if _, err := store.GetUser(m.UserID); errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if existing, err := store.MemberByWorkspaceUser(m.WorkspaceID, m.UserID); err == nil {
		_ = utils.JSONWrite(w, http.StatusOK, existing)
		return
	}
	if m.ID == "" {
		m.ID = utils.GenMemberID()
	}
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	if err := store.SaveMember(m); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("member_saved", "id", m.ID, "workspace", m.WorkspaceID, "user", m.UserID)
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}
