package conversations

import (
	"errors"
	"path/filepath"
	"sync"
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

func seedMember(t *testing.T, workspaceID, memberID, userID string) {
	t.Helper()
	if err := store.SaveUser(models.User{ID: userID, Name: userID}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := store.SaveMember(models.Member{ID: memberID, WorkspaceID: workspaceID, UserID: userID, Role: models.RoleMember}); err != nil {
		t.Fatalf("SaveMember: %v", err)
	}
}

// TestGetOrCreateOrderIndependent verifies both members resolve the same
// conversation no matter who asks first.
func TestGetOrCreateOrderIndependent(t *testing.T) {
	openTestStore(t)
	seedMember(t, "ws1", "mbr_a", "usr_a")
	seedMember(t, "ws1", "mbr_b", "usr_b")

	first, err := GetOrCreate("ws1", "usr_a", "mbr_b")
	if err != nil {
		t.Fatalf("GetOrCreate a->b: %v", err)
	}
	second, err := GetOrCreate("ws1", "usr_b", "mbr_a")
	if err != nil {
		t.Fatalf("GetOrCreate b->a: %v", err)
	}
	if first != second {
		t.Fatalf("expected one conversation per pair; got %s and %s", first, second)
	}
	third, err := GetOrCreate("ws1", "usr_a", "mbr_b")
	if err != nil {
		t.Fatalf("GetOrCreate repeat: %v", err)
	}
	if third != first {
		t.Fatalf("repeat resolve diverged: %s vs %s", third, first)
	}
}

// TestGetOrCreateSelfConversation verifies a member may converse with
// themselves and still gets exactly one row.
func TestGetOrCreateSelfConversation(t *testing.T) {
	openTestStore(t)
	seedMember(t, "ws1", "mbr_a", "usr_a")

	first, err := GetOrCreate("ws1", "usr_a", "mbr_a")
	if err != nil {
		t.Fatalf("GetOrCreate self: %v", err)
	}
	second, err := GetOrCreate("ws1", "usr_a", "mbr_a")
	if err != nil {
		t.Fatalf("GetOrCreate self repeat: %v", err)
	}
	if first != second {
		t.Fatalf("self conversation not idempotent: %s vs %s", first, second)
	}
	c, err := store.GetConversation(first)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if c.MemberOneID != "mbr_a" || c.MemberTwoID != "mbr_a" {
		t.Fatalf("unexpected self pair: %+v", c)
	}
}

// TestGetOrCreateRequesterNotMember verifies a user without a membership in
// the workspace is rejected before anything is created.
func TestGetOrCreateRequesterNotMember(t *testing.T) {
	openTestStore(t)
	seedMember(t, "ws1", "mbr_b", "usr_b")

	if _, err := GetOrCreate("ws1", "usr_stranger", "mbr_b"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember; got %v", err)
	}
}

// TestGetOrCreateTargetChecks verifies absent targets and targets from
// another workspace both read as not found.
func TestGetOrCreateTargetChecks(t *testing.T) {
	openTestStore(t)
	seedMember(t, "ws1", "mbr_a", "usr_a")
	seedMember(t, "ws2", "mbr_elsewhere", "usr_e")

	if _, err := GetOrCreate("ws1", "usr_a", "mbr_missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing target; got %v", err)
	}
	if _, err := GetOrCreate("ws1", "usr_a", "mbr_elsewhere"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cross-workspace target; got %v", err)
	}
}

// TestGetOrCreateConcurrentFirstContact hammers the same pair from both
// sides concurrently and expects exactly one conversation row.
func TestGetOrCreateConcurrentFirstContact(t *testing.T) {
	openTestStore(t)
	seedMember(t, "ws1", "mbr_a", "usr_a")
	seedMember(t, "ws1", "mbr_b", "usr_b")

	const n = 16
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				ids[i], errs[i] = GetOrCreate("ws1", "usr_a", "mbr_b")
			} else {
				ids[i], errs[i] = GetOrCreate("ws1", "usr_b", "mbr_a")
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("divergent conversations: %s vs %s", ids[i], ids[0])
		}
	}
	convs, err := store.ConversationsByWorkspace("ws1")
	if err != nil {
		t.Fatalf("ConversationsByWorkspace: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation row; got %d", len(convs))
	}
}
