package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"chatstore/pkg/logger"
	"chatstore/pkg/models"
)

// InsertMessage writes the message row plus its context index entry and,
// for replies, the parent-only index entry. The ord token is assigned here
// and persisted on the row so a later delete can rebuild the index keys.
func InsertMessage(m *models.Message) error {
	if m.ID == "" {
		return fmt.Errorf("message id required")
	}
	if m.Ord == "" {
		m.Ord = NewOrd()
	}
	if err := setJSON(msgKey(m.ID), m); err != nil {
		return err
	}
	key := ctxIndexKey(m.ChannelID, m.ParentID, m.ConversationID, m.Ord)
	if err := set(key, []byte(m.ID)); err != nil {
		return err
	}
	if m.ParentID != "" {
		if err := set(parentIndexKey(m.ParentID, m.Ord), []byte(m.ID)); err != nil {
			return err
		}
	}
	logger.Info("message_saved", "id", m.ID, "workspace", m.WorkspaceID,
		"channel", m.ChannelID, "conversation", m.ConversationID, "parent", m.ParentID)
	return nil
}

// GetMessage returns the message row or ErrNotFound.
func GetMessage(id string) (models.Message, error) {
	var m models.Message
	if err := getJSON(msgKey(id), &m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// PatchMessage merges fields into the stored row. Fails with ErrNotFound if
// the id is absent. Index entries are untouched: the ord token never
// changes, so edits do not move a message within its page.
func PatchMessage(id string, fields map[string]interface{}) error {
	b, err := get(msgKey(id))
	if err != nil {
		return err
	}
	var row map[string]interface{}
	if err := json.Unmarshal(b, &row); err != nil {
		return fmt.Errorf("invalid stored message %s: %w", id, err)
	}
	for k, v := range fields {
		row[k] = v
	}
	if err := setJSON(msgKey(id), row); err != nil {
		return err
	}
	logger.Info("message_patched", "id", id)
	return nil
}

// DeleteMessage removes the message row and its index entries. Idempotent:
// deleting an absent id is a no-op. Reactions and replies pointing at the
// id are left behind; the read path tolerates them and the retention
// sweeper reclaims them.
func DeleteMessage(id string) error {
	m, err := GetMessage(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := del(ctxIndexKey(m.ChannelID, m.ParentID, m.ConversationID, m.Ord)); err != nil {
		return err
	}
	if m.ParentID != "" {
		if err := del(parentIndexKey(m.ParentID, m.Ord)); err != nil {
			return err
		}
	}
	if err := del(msgKey(id)); err != nil {
		return err
	}
	logger.Info("message_deleted", "id", id)
	return nil
}

// RepliesByParent returns all direct replies to a message in creation
// order. Dangling index entries are skipped.
func RepliesByParent(parentID string) ([]models.Message, error) {
	ids, err := scanIndex(parentIndexPrefix(parentID))
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		m, err := GetMessage(id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
