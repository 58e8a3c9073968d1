package store

import (
	"errors"
	"fmt"

	"chatstore/pkg/logger"
	"chatstore/pkg/models"
)

// InsertReaction writes the reaction row and its message-scoped index
// entry. Duplicate (message, member, value) rows are allowed; the
// aggregation layer deduplicates.
func InsertReaction(rx *models.Reaction) error {
	if rx.ID == "" {
		return fmt.Errorf("reaction id required")
	}
	if rx.Ord == "" {
		rx.Ord = NewOrd()
	}
	if err := setJSON(reactKey(rx.ID), rx); err != nil {
		return err
	}
	if err := set(reactIndexKey(rx.MessageID, rx.Ord), []byte(rx.ID)); err != nil {
		return err
	}
	logger.Debug("reaction_saved", "id", rx.ID, "message", rx.MessageID, "value", rx.Value)
	return nil
}

// GetReaction returns the reaction row or ErrNotFound.
func GetReaction(id string) (models.Reaction, error) {
	var rx models.Reaction
	if err := getJSON(reactKey(id), &rx); err != nil {
		return models.Reaction{}, err
	}
	return rx, nil
}

// DeleteReaction removes the reaction row and its index entry. Idempotent.
func DeleteReaction(id string) error {
	rx, err := GetReaction(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := del(reactIndexKey(rx.MessageID, rx.Ord)); err != nil {
		return err
	}
	if err := del(reactKey(id)); err != nil {
		return err
	}
	logger.Debug("reaction_deleted", "id", id, "message", rx.MessageID)
	return nil
}

// ReactionsByMessage returns all raw reaction rows for a message in
// insertion order. Dangling index entries are skipped.
func ReactionsByMessage(messageID string) ([]models.Reaction, error) {
	ids, err := scanIndex(reactIndexPrefix(messageID))
	if err != nil {
		return nil, err
	}
	out := make([]models.Reaction, 0, len(ids))
	for _, id := range ids {
		rx, err := GetReaction(id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rx)
	}
	return out, nil
}
