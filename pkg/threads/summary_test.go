package threads

import (
	"path/filepath"
	"testing"

	"chatstore/pkg/identity"
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

func seedIdentity(t *testing.T, memberID, userID, name string) {
	t.Helper()
	if err := store.SaveUser(models.User{ID: userID, Name: name, Image: "img/" + userID, CreatedTS: 77}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := store.SaveMember(models.Member{ID: memberID, WorkspaceID: "ws1", UserID: userID, Role: models.RoleMember}); err != nil {
		t.Fatalf("SaveMember: %v", err)
	}
}

func seedReply(t *testing.T, id, parentID, memberID string) {
	t.Helper()
	m := models.Message{ID: id, WorkspaceID: "ws1", MemberID: memberID, ChannelID: "ch1", ParentID: parentID, Body: "b"}
	if err := store.InsertMessage(&m); err != nil {
		t.Fatalf("InsertMessage %s: %v", id, err)
	}
}

// TestSummarizeNoReplies verifies the zero sentinel for a message without
// replies.
func TestSummarizeNoReplies(t *testing.T) {
	openTestStore(t)

	sum, err := Summarize("msg_lonely", identity.NewCache())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum != (models.ThreadSummary{}) {
		t.Fatalf("expected zero summary; got %+v", sum)
	}
}

// TestSummarizePreviewsLatestReplier verifies the count covers every reply
// while the preview belongs to the most recent replier's identity.
func TestSummarizePreviewsLatestReplier(t *testing.T) {
	openTestStore(t)

	seedIdentity(t, "mbr_1", "usr_1", "ada")
	seedIdentity(t, "mbr_2", "usr_2", "grace")
	seedReply(t, "msg_r1", "msg_root", "mbr_1")
	seedReply(t, "msg_r2", "msg_root", "mbr_2")
	seedReply(t, "msg_r3", "msg_root", "mbr_2")

	sum, err := Summarize("msg_root", identity.NewCache())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Count != 3 {
		t.Fatalf("expected count 3; got %d", sum.Count)
	}
	if sum.Name != "grace" || sum.Image != "img/usr_2" {
		t.Fatalf("expected preview of latest replier; got %+v", sum)
	}
	if sum.Timestamp != 77 {
		t.Fatalf("expected identity creation time in preview; got %d", sum.Timestamp)
	}
}

// TestSummarizeUnresolvableAuthorFallsBackToZero verifies a vanished replier
// identity collapses the whole summary to the zero sentinel.
func TestSummarizeUnresolvableAuthorFallsBackToZero(t *testing.T) {
	openTestStore(t)

	seedIdentity(t, "mbr_1", "usr_1", "ada")
	seedReply(t, "msg_r1", "msg_root", "mbr_1")
	seedReply(t, "msg_r2", "msg_root", "mbr_ghost")

	sum, err := Summarize("msg_root", identity.NewCache())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum != (models.ThreadSummary{}) {
		t.Fatalf("expected zero summary when the latest replier is unresolvable; got %+v", sum)
	}
}
