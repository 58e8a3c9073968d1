package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatstore/pkg/auth"
	"chatstore/pkg/conversations"
	"chatstore/pkg/logger"
	"chatstore/pkg/store"
	"chatstore/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterConversations registers the conversation routes.
func RegisterConversations(r *mux.Router) {
	r.HandleFunc("/conversations", createOrGetConversation).Methods(http.MethodPost)
}

// createOrGetConversation handles POST /conversations. The pair (caller's
// member, member_id) is unordered: either member asking first gets the
// same conversation back, including the self-conversation case where
// member_id is the caller's own member.
func createOrGetConversation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var payload struct {
		WorkspaceID string `json:"workspace_id"`
		MemberID    string `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if payload.WorkspaceID == "" || payload.MemberID == "" {
		utils.JSONError(w, http.StatusBadRequest, "workspace_id and member_id are required")
		return
	}

	userID, status, msg := auth.ResolveUserFromRequest(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}

	id, err := conversations.GetOrCreate(payload.WorkspaceID, userID, payload.MemberID)
	switch {
	case errors.Is(err, conversations.ErrNotMember):
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "member not found")
		return
	case err != nil:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conv, err := store.GetConversation(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("conversation_resolved", "id", id, "workspace", payload.WorkspaceID)
	_ = utils.JSONWrite(w, http.StatusOK, conv)
}
