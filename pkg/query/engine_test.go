package query

import (
	"context"
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

func seedIdentity(t *testing.T, memberID, userID, name string) {
	t.Helper()
	if err := store.SaveUser(models.User{ID: userID, Name: name, CreatedTS: 5}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := store.SaveMember(models.Member{ID: memberID, WorkspaceID: "ws1", UserID: userID, Role: models.RoleMember}); err != nil {
		t.Fatalf("SaveMember: %v", err)
	}
}

func seedMessage(t *testing.T, id, memberID, channel, conversation, parent string) {
	t.Helper()
	m := models.Message{
		ID: id, WorkspaceID: "ws1", MemberID: memberID,
		ChannelID: channel, ConversationID: conversation, ParentID: parent,
		Body: "b",
	}
	if err := store.InsertMessage(&m); err != nil {
		t.Fatalf("InsertMessage %s: %v", id, err)
	}
}

// TestPageContextValidate verifies the exactly-one discriminator rule.
func TestPageContextValidate(t *testing.T) {
	cases := []struct {
		pc PageContext
		ok bool
	}{
		{PageContext{}, false},
		{PageContext{ChannelID: "ch1"}, true},
		{PageContext{ConversationID: "cnv_1"}, true},
		{PageContext{ParentMessageID: "msg_1"}, true},
		{PageContext{ChannelID: "ch1", ConversationID: "cnv_1"}, false},
		{PageContext{ChannelID: "ch1", ParentMessageID: "msg_1"}, false},
	}
	for _, c := range cases {
		err := c.pc.Validate()
		if c.ok && err != nil {
			t.Fatalf("%+v: unexpected error %v", c.pc, err)
		}
		if !c.ok && !errors.Is(err, ErrBadContext) {
			t.Fatalf("%+v: expected ErrBadContext; got %v", c.pc, err)
		}
	}
}

// TestGetPageBadContext verifies ambiguous contexts surface through GetPage.
func TestGetPageBadContext(t *testing.T) {
	openTestStore(t)
	_, err := GetPage(context.Background(), PageContext{}, "", 10)
	if !errors.Is(err, ErrBadContext) {
		t.Fatalf("expected ErrBadContext; got %v", err)
	}
}

// TestGetPageParentNotFound verifies a thread page over an absent parent
// fails with the dedicated error.
func TestGetPageParentNotFound(t *testing.T) {
	openTestStore(t)
	_, err := GetPage(context.Background(), PageContext{ParentMessageID: "msg_nope"}, "", 10)
	if !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound; got %v", err)
	}
}

// TestGetPageEnrichesRows verifies the per-row joins: author identity,
// reaction groups and the thread rollup all ride along.
func TestGetPageEnrichesRows(t *testing.T) {
	openTestStore(t)
	seedIdentity(t, "mbr_1", "usr_1", "ada")
	seedIdentity(t, "mbr_2", "usr_2", "grace")
	seedMessage(t, "msg_root", "mbr_1", "ch1", "", "")
	seedMessage(t, "msg_r1", "mbr_2", "ch1", "", "msg_root")
	rx := models.Reaction{ID: "rct_1", MessageID: "msg_root", MemberID: "mbr_2", Value: "👍"}
	if err := store.InsertReaction(&rx); err != nil {
		t.Fatalf("InsertReaction: %v", err)
	}

	page, err := GetPage(context.Background(), PageContext{ChannelID: "ch1"}, "", 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.Messages) != 1 {
		t.Fatalf("expected only the top-level row; got %d", len(page.Messages))
	}
	em := page.Messages[0]
	if em.User.Name != "ada" || em.Member.ID != "mbr_1" {
		t.Fatalf("author join wrong: %+v", em)
	}
	if len(em.Reactions) != 1 || em.Reactions[0].Value != "👍" || em.Reactions[0].Count != 1 {
		t.Fatalf("reaction join wrong: %+v", em.Reactions)
	}
	if em.Thread == nil || em.Thread.Count != 1 || em.Thread.Name != "grace" {
		t.Fatalf("thread rollup wrong: %+v", em.Thread)
	}
	if !page.IsDone {
		t.Fatalf("expected exhausted context")
	}
}

// TestGetPageDropsUnresolvableAuthors verifies a row whose member row is
// gone vanishes from the page without failing the request.
func TestGetPageDropsUnresolvableAuthors(t *testing.T) {
	openTestStore(t)
	seedIdentity(t, "mbr_1", "usr_1", "ada")
	seedMessage(t, "msg_ok", "mbr_1", "ch1", "", "")
	seedMessage(t, "msg_orphan", "mbr_ghost", "ch1", "", "")

	page, err := GetPage(context.Background(), PageContext{ChannelID: "ch1"}, "", 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].ID != "msg_ok" {
		t.Fatalf("expected orphan dropped; got %+v", page.Messages)
	}
}

// TestGetPageThreadContext verifies a parent context pages the replies, not
// the parent or its siblings.
func TestGetPageThreadContext(t *testing.T) {
	openTestStore(t)
	seedIdentity(t, "mbr_1", "usr_1", "ada")
	seedMessage(t, "msg_root", "mbr_1", "ch1", "", "")
	seedMessage(t, "msg_sibling", "mbr_1", "ch1", "", "")
	seedMessage(t, "msg_r1", "mbr_1", "ch1", "", "msg_root")
	seedMessage(t, "msg_r2", "mbr_1", "ch1", "", "msg_root")

	page, err := GetPage(context.Background(), PageContext{ParentMessageID: "msg_root"}, "", 10)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.Messages) != 2 {
		t.Fatalf("expected 2 replies; got %d", len(page.Messages))
	}
	for _, em := range page.Messages {
		if em.ParentID != "msg_root" {
			t.Fatalf("non-reply leaked into thread page: %+v", em.Message)
		}
	}
}

// TestGetPageLimitClamp verifies zero and oversized limits clamp to the
// configured defaults instead of failing.
func TestGetPageLimitClamp(t *testing.T) {
	openTestStore(t)
	seedIdentity(t, "mbr_1", "usr_1", "ada")
	for i := 0; i < DefaultPageSize+3; i++ {
		seedMessage(t, "msg_"+string(rune('a'+i)), "mbr_1", "ch1", "", "")
	}

	page, err := GetPage(context.Background(), PageContext{ChannelID: "ch1"}, "", 0)
	if err != nil {
		t.Fatalf("GetPage limit 0: %v", err)
	}
	if len(page.Messages) != DefaultPageSize {
		t.Fatalf("expected default page size %d; got %d", DefaultPageSize, len(page.Messages))
	}
	if page.IsDone {
		t.Fatalf("expected more rows behind the cursor")
	}

	page, err = GetPage(context.Background(), PageContext{ChannelID: "ch1"}, "", MaxPageSize*10)
	if err != nil {
		t.Fatalf("GetPage oversized limit: %v", err)
	}
	if !page.IsDone {
		t.Fatalf("expected a single clamped page to drain the context")
	}
}

// TestEnrichOneSkipsThreadRollup verifies single-row enrichment carries no
// thread preview and signals unresolvable authors with a nil row.
func TestEnrichOneSkipsThreadRollup(t *testing.T) {
	openTestStore(t)
	seedIdentity(t, "mbr_1", "usr_1", "ada")
	seedMessage(t, "msg_root", "mbr_1", "ch1", "", "")
	seedMessage(t, "msg_r1", "mbr_1", "ch1", "", "msg_root")

	m, err := store.GetMessage("msg_root")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	em, err := EnrichOne(m)
	if err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
	if em == nil || em.Thread != nil {
		t.Fatalf("expected enriched row without thread rollup; got %+v", em)
	}

	ghost := models.Message{ID: "msg_ghost", WorkspaceID: "ws1", MemberID: "mbr_ghost", ChannelID: "ch1", Body: "b"}
	if err := store.InsertMessage(&ghost); err != nil {
		t.Fatalf("InsertMessage: %v", err)
	}
	em, err = EnrichOne(ghost)
	if err != nil {
		t.Fatalf("EnrichOne ghost: %v", err)
	}
	if em != nil {
		t.Fatalf("expected nil row for unresolvable author; got %+v", em)
	}
}
