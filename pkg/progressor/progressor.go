// Package progressor runs one-shot upgrade work when the stored schema
// version differs from the running binary's version.
package progressor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatstore/pkg/logger"
	"chatstore/pkg/models"
	"chatstore/pkg/store"
)

const (
	systemVersionKey    = "system:version"
	systemInProgressKey = "system:migration_in_progress"
)

// Sync performs upgrade work between versions. Edit in-place for migration
// logic.
func Sync(ctx context.Context, from, to string) error {
	logger.Info("progressor_sync_start", "from", from, "to", to)

	// Migration: backfill canonical pair keys for conversations created
	// before pair keys existed. Re-saving a conversation rewrites its row,
	// workspace listing and pair key, so this is idempotent.
	keys, err := store.ListKeys("conv:")
	if err != nil {
		logger.Error("progressor_list_conversations_failed", "error", err)
		return err
	}
	for _, key := range keys {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw, err := store.GetKey(key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		var c models.Conversation
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			logger.Error("progressor_unmarshal_conversation_failed", "key", key, "error", err)
			continue
		}
		if _, err := store.ConversationIDByPair(c.WorkspaceID, c.MemberOneID, c.MemberTwoID); err == nil {
			continue
		}
		if err := store.SaveConversation(c); err != nil {
			logger.Error("progressor_backfill_pair_failed", "conversation", c.ID, "error", err)
			continue
		}
		logger.Info("progressor_pair_backfilled", "conversation", c.ID)
	}

	logger.Info("progressor_sync_done", "from", from, "to", to)
	return nil
}

// Run checks for a version change and runs Sync if needed.
// Returns (invoked, error): invoked is true if Sync ran.
func Run(ctx context.Context, newVersion string) (bool, error) {
	stored, err := store.GetKey(systemVersionKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("progressor_read_version_failed", "error", err)
	}
	logger.Info("progressor_version_check", "stored", stored, "running", newVersion)
	if stored == newVersion {
		logger.Info("progressor_noop", "version", newVersion)
		return false, nil
	}

	marker := map[string]string{
		"from":       stored,
		"to":         newVersion,
		"started_at": time.Now().UTC().Format(time.RFC3339),
	}
	mb, _ := json.Marshal(marker)
	if err := store.SaveKey(systemInProgressKey, mb); err != nil {
		logger.Error("progressor_write_inprogress_failed", "error", err)
		return true, fmt.Errorf("failed to write in-progress marker: %w", err)
	}

	logger.Info("progressor_start_sync", "from", stored, "to", newVersion)
	if err := Sync(ctx, stored, newVersion); err != nil {
		logger.Error("progressor_sync_failed", "from", stored, "to", newVersion, "error", err)
		return true, err
	}
	logger.Info("progressor_sync_succeeded", "from", stored, "to", newVersion)

	if err := store.SaveKey(systemVersionKey, []byte(newVersion)); err != nil {
		logger.Error("progressor_persist_version_failed", "version", newVersion, "error", err)
		return true, fmt.Errorf("failed to persist new version: %w", err)
	}

	if err := store.DeleteKey(systemInProgressKey); err != nil {
		logger.Error("progressor_delete_inprogress_failed", "error", err)
	}

	logger.Info("progressor_version_persisted", "version", newVersion)
	return true, nil
}
