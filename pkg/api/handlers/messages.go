package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"chatstore/pkg/auth"
	"chatstore/pkg/logger"
	"chatstore/pkg/models"
	"chatstore/pkg/query"
	"chatstore/pkg/store"
	"chatstore/pkg/utils"
	"chatstore/pkg/validation"

	"github.com/gorilla/mux"
)

// RegisterMessages registers all message-related HTTP routes to the
// provided router.
func RegisterMessages(r *mux.Router) {
	r.HandleFunc("/messages", createMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages", listMessages).Methods(http.MethodGet)

	r.HandleFunc("/messages/{id}", getMessage).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id}", updateMessage).Methods(http.MethodPut)
	r.HandleFunc("/messages/{id}", deleteMessage).Methods(http.MethodDelete)
}

// createMessage handles POST /messages. The caller must resolve to a member
// of the target workspace. Top-level messages carry exactly one of
// channel_id or conversation_id; replies name parent_message_id and take
// the parent's channel or conversation, so a thread always lives in its
// root's context.
func createMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m models.Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	userID, status, msg := auth.ResolveUserFromRequest(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
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
	m.MemberID = member.ID

	// replies inherit the parent's full context; an explicit context on a
	// reply must agree with the parent's
	if m.ParentID != "" {
		parent, err := store.GetMessage(m.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "parent message not found")
			return
		}
		if err != nil {
			utils.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if parent.WorkspaceID != m.WorkspaceID {
			utils.JSONError(w, http.StatusNotFound, "parent message not found")
			return
		}
		if (m.ChannelID != "" && m.ChannelID != parent.ChannelID) ||
			(m.ConversationID != "" && m.ConversationID != parent.ConversationID) {
			utils.JSONError(w, http.StatusBadRequest, "reply context does not match parent")
			return
		}
		m.ChannelID = parent.ChannelID
		m.ConversationID = parent.ConversationID
	}

	if err := validation.ValidateMessage(m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	m.ID = utils.GenMessageID()
	m.Ord = "" // the store assigns the ordering token at insert
	m.CreatedTS = time.Now().UTC().UnixNano()
	m.UpdatedTS = 0
	if err := store.InsertMessage(&m); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("message_created", "id", m.ID, "workspace", m.WorkspaceID, "member", m.MemberID)
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}

// listMessages handles GET /messages. Exactly one of the channel,
// conversation or parent query parameters selects the page context;
// cursor and limit drive pagination.
func listMessages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pc := query.PageContext{
		ChannelID:       r.URL.Query().Get("channel"),
		ConversationID:  r.URL.Query().Get("conversation"),
		ParentMessageID: r.URL.Query().Get("parent"),
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.JSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := query.GetPage(r.Context(), pc, cursor, limit)
	switch {
	case errors.Is(err, query.ErrBadContext), errors.Is(err, store.ErrBadCursor):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, query.ErrParentNotFound):
		utils.JSONError(w, http.StatusNotFound, "parent message not found")
		return
	case err != nil:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, page)
}

// getMessage handles GET /messages/{id}. Callers outside the message's
// workspace get the same 404 as a missing row, so the endpoint does not
// leak existence.
func getMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	userID, status, msg := auth.ResolveUserFromRequest(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	m, err := store.GetMessage(id)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := store.MemberIDByWorkspaceUser(m.WorkspaceID, userID); err != nil {
		utils.JSONError(w, http.StatusNotFound, "not found")
		return
	}

	em, err := query.EnrichOne(m)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if em == nil {
		// author row gone: treat the message as unreadable
		utils.JSONError(w, http.StatusNotFound, "not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, em)
}

// updateMessage handles PUT /messages/{id}; only the author may edit and
// only the body changes.
func updateMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var payload struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	m, member, status, msg := loadOwnedMessage(r, id)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	check := m
	check.Body = payload.Body
	if err := validation.ValidateMessage(check); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC().UnixNano()
	if err := store.PatchMessage(id, map[string]interface{}{"body": payload.Body, "updated_ts": now}); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("message_updated", "id", id, "member", member.ID)
	m.Body = payload.Body
	m.UpdatedTS = now
	_ = utils.JSONWrite(w, http.StatusOK, m)
}

// deleteMessage handles DELETE /messages/{id}; only the author may delete.
func deleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	_, member, status, msg := loadOwnedMessage(r, id)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	if err := store.DeleteMessage(id); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("message_deleted", "id", id, "member", member.ID)
	w.WriteHeader(http.StatusNoContent)
}

// loadOwnedMessage resolves the caller, loads the message and enforces
// that the caller's member authored it. Returns an HTTP status and
// message on failure, zero status on success.
func loadOwnedMessage(r *http.Request, id string) (models.Message, models.Member, int, string) {
	var none models.Message
	userID, status, msg := auth.ResolveUserFromRequest(r)
	if status != 0 {
		return none, models.Member{}, status, msg
	}
	m, err := store.GetMessage(id)
	if errors.Is(err, store.ErrNotFound) {
		return none, models.Member{}, http.StatusNotFound, "not found"
	}
	if err != nil {
		return none, models.Member{}, http.StatusInternalServerError, err.Error()
	}
	member, err := store.MemberByWorkspaceUser(m.WorkspaceID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return none, models.Member{}, http.StatusUnauthorized, "unauthorized"
	}
	if err != nil {
		return none, models.Member{}, http.StatusInternalServerError, err.Error()
	}
	if m.MemberID != member.ID {
		return none, models.Member{}, http.StatusForbidden, "forbidden"
	}
	return m, member, 0, ""
}
