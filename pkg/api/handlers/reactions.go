package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"chatstore/pkg/auth"
	"chatstore/pkg/logger"
	"chatstore/pkg/models"
	"chatstore/pkg/store"
	"chatstore/pkg/utils"
	"chatstore/pkg/validation"

	"github.com/gorilla/mux"
)

// RegisterReactions registers reaction routes under the message resource.
func RegisterReactions(r *mux.Router) {
	r.HandleFunc("/messages/{id}/reactions", toggleReaction).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}/reactions/{reactionID}", removeReaction).Methods(http.MethodDelete)
}

// toggleReaction handles POST /messages/{id}/reactions. Posting a value the
// caller's member already placed on the message removes that row instead of
// adding a second one; otherwise a new reaction row is written. Duplicate
// rows from other members are allowed and counted.
func toggleReaction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	messageID := mux.Vars(r)["id"]

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateReactionValue(payload.Value); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, status, msg := auth.ResolveUserFromRequest(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	m, err := store.GetMessage(messageID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	member, err := store.MemberByWorkspaceUser(m.WorkspaceID, userID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	existing, err := store.ReactionsByMessage(messageID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, rx := range existing {
		if rx.MemberID == member.ID && rx.Value == payload.Value {
			if err := store.DeleteReaction(rx.ID); err != nil {
				utils.JSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
			logger.Info("reaction_removed", "message", messageID, "reaction", rx.ID, "member", member.ID)
			_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"removed": rx.ID})
			return
		}
	}

	rx := models.Reaction{
		ID:        utils.GenReactionID(),
		MessageID: messageID,
		MemberID:  member.ID,
		Value:     payload.Value,
		CreatedTS: time.Now().UTC().UnixNano(),
	}
	if err := store.InsertReaction(&rx); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("reaction_added", "message", messageID, "reaction", rx.ID, "member", member.ID)
	_ = utils.JSONWrite(w, http.StatusCreated, rx)
}

// removeReaction handles DELETE /messages/{id}/reactions/{reactionID};
// members may only remove their own rows. Deleting an already removed
// reaction is a no-op 204.
func removeReaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	messageID := vars["id"]
	reactionID := vars["reactionID"]

	userID, status, msg := auth.ResolveUserFromRequest(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	rx, err := store.GetReaction(reactionID)
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rx.MessageID != messageID {
		utils.JSONError(w, http.StatusNotFound, "not found")
		return
	}
	m, err := store.GetMessage(messageID)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	member, err := store.MemberByWorkspaceUser(m.WorkspaceID, userID)
	if err != nil || rx.MemberID != member.ID {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := store.DeleteReaction(reactionID); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("reaction_removed", "message", messageID, "reaction", reactionID, "member", member.ID)
	w.WriteHeader(http.StatusNoContent)
}
