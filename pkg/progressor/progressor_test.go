package progressor

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"chatstore/pkg/models"
	"chatstore/pkg/store"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := store.Open(filepath.Join(t.TempDir(), "store")); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

// TestSyncBackfillsPairKeys verifies a conversation row written before pair
// keys existed becomes resolvable by pair after a sync.
func TestSyncBackfillsPairKeys(t *testing.T) {
	openTestStore(t)

	// write the bare row the way an older release would have
	legacy := models.Conversation{ID: "cnv_old", WorkspaceID: "ws1", MemberOneID: "mbr_a", MemberTwoID: "mbr_b", CreatedTS: 1}
	b, _ := json.Marshal(legacy)
	if err := store.SaveKey("conv:cnv_old", b); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	if _, err := store.ConversationIDByPair("ws1", "mbr_a", "mbr_b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("precondition: pair key must be absent; got %v", err)
	}

	if err := Sync(context.Background(), "1.0", "1.1"); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	id, err := store.ConversationIDByPair("ws1", "mbr_b", "mbr_a")
	if err != nil {
		t.Fatalf("ConversationIDByPair after sync: %v", err)
	}
	if id != "cnv_old" {
		t.Fatalf("expected cnv_old; got %s", id)
	}
}

// TestRunPersistsVersion verifies the version check: a first run migrates
// and persists, a second run with the same version is a no-op.
func TestRunPersistsVersion(t *testing.T) {
	openTestStore(t)

	invoked, err := Run(context.Background(), "1.1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !invoked {
		t.Fatalf("expected first run to migrate")
	}
	v, err := store.GetKey(systemVersionKey)
	if err != nil {
		t.Fatalf("GetKey version: %v", err)
	}
	if v != "1.1" {
		t.Fatalf("expected persisted version 1.1; got %s", v)
	}
	if _, err := store.GetKey(systemInProgressKey); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected in-progress marker cleared; got %v", err)
	}

	invoked, err = Run(context.Background(), "1.1")
	if err != nil {
		t.Fatalf("Run repeat: %v", err)
	}
	if invoked {
		t.Fatalf("expected repeat run to be a no-op")
	}
}
