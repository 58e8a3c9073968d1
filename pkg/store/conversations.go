package store

import (
	"errors"

	"chatstore/pkg/logger"
	"chatstore/pkg/models"
)

// SaveConversation inserts a conversation row, its workspace listing entry
// and the canonical unordered-pair key.
func SaveConversation(c models.Conversation) error {
	if err := setJSON(convKey(c.ID), c); err != nil {
		return err
	}
	if err := set(convIndexKey(c.WorkspaceID, c.ID), []byte(c.ID)); err != nil {
		return err
	}
	if err := set(convPairKey(c.WorkspaceID, c.MemberOneID, c.MemberTwoID), []byte(c.ID)); err != nil {
		return err
	}
	logger.Info("conversation_saved", "id", c.ID, "workspace", c.WorkspaceID)
	return nil
}

// GetConversation returns the conversation row or ErrNotFound.
func GetConversation(id string) (models.Conversation, error) {
	var c models.Conversation
	if err := getJSON(convKey(id), &c); err != nil {
		return models.Conversation{}, err
	}
	return c, nil
}

// ConversationIDByPair resolves the conversation between two members of a
// workspace via the canonical pair key, in either member order.
func ConversationIDByPair(workspaceID, memberA, memberB string) (string, error) {
	v, err := get(convPairKey(workspaceID, memberA, memberB))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// ConversationsByWorkspace returns all conversation rows in a workspace.
// Dangling listing entries are skipped.
func ConversationsByWorkspace(workspaceID string) ([]models.Conversation, error) {
	ids, err := scanIndex(convIndexPrefix(workspaceID))
	if err != nil {
		return nil, err
	}
	out := make([]models.Conversation, 0, len(ids))
	for _, id := range ids {
		c, err := GetConversation(id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
