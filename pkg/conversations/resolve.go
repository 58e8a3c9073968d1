// Package conversations resolves 1:1 conversations between workspace
// members, creating them lazily on first contact.
package conversations

import (
	"errors"
	"sync"
	"time"

	"chatstore/pkg/logger"
	"chatstore/pkg/models"
	"chatstore/pkg/store"
	"chatstore/pkg/utils"
)

// ErrNotMember is returned when the requesting user has no membership in
// the workspace.
var ErrNotMember = errors.New("requesting user is not a member of the workspace")

// createMu serializes the check-then-insert so concurrent first-contacts
// between the same pair collapse to one row. The canonical pair key in the
// store is the durable half of the constraint.
var createMu sync.Mutex

// GetOrCreate returns the id of the 1:1 conversation between the
// requesting user's member and the other member, creating it if absent.
// Idempotent and order-independent: (A,B) and (B,A) resolve to the same
// row. Self-conversations (both members equal) are permitted.
func GetOrCreate(workspaceID, requestingUserID, otherMemberID string) (string, error) {
	current, err := store.MemberByWorkspaceUser(workspaceID, requestingUserID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotMember
	}
	if err != nil {
		return "", err
	}

	other, err := store.GetMember(otherMemberID)
	if err != nil {
		return "", err
	}
	if other.WorkspaceID != workspaceID {
		return "", store.ErrNotFound
	}

	createMu.Lock()
	defer createMu.Unlock()

	if id, err := store.ConversationIDByPair(workspaceID, current.ID, other.ID); err == nil {
		return id, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	// Rows created before the pair key existed are only reachable by the
	// workspace scan, checking both orderings.
	if id, ok, err := scanForPair(workspaceID, current.ID, other.ID); err != nil {
		return "", err
	} else if ok {
		return id, nil
	}

	c := models.Conversation{
		ID:          utils.GenConversationID(),
		WorkspaceID: workspaceID,
		MemberOneID: current.ID,
		MemberTwoID: other.ID,
		CreatedTS:   time.Now().UTC().UnixNano(),
	}
	if err := store.SaveConversation(c); err != nil {
		return "", err
	}
	logger.Info("conversation_created", "id", c.ID, "workspace", workspaceID,
		"member_one", c.MemberOneID, "member_two", c.MemberTwoID)
	return c.ID, nil
}

func scanForPair(workspaceID, a, b string) (string, bool, error) {
	convs, err := store.ConversationsByWorkspace(workspaceID)
	if err != nil {
		return "", false, err
	}
	for _, c := range convs {
		if (c.MemberOneID == a && c.MemberTwoID == b) || (c.MemberOneID == b && c.MemberTwoID == a) {
			return c.ID, true, nil
		}
	}
	return "", false, nil
}
