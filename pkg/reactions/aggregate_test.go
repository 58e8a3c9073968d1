package reactions

import (
	"reflect"
	"testing"

	"chatstore/pkg/models"
)

func rx(member, value string) models.Reaction {
	return models.Reaction{MessageID: "msg_1", MemberID: member, Value: value}
}

// TestFoldCountsDuplicatesButDedupesMembers verifies the asymmetry between
// Count and MemberIDs: every vote counts, each member lists once.
func TestFoldCountsDuplicatesButDedupesMembers(t *testing.T) {
	groups := Fold([]models.Reaction{
		rx("mbr_x", "👍"),
		rx("mbr_x", "👍"),
		rx("mbr_y", "👍"),
	})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group; got %d", len(groups))
	}
	g := groups[0]
	if g.Value != "👍" || g.Count != 3 {
		t.Fatalf("expected count 3 for 👍; got %+v", g)
	}
	if !reflect.DeepEqual(g.MemberIDs, []string{"mbr_x", "mbr_y"}) {
		t.Fatalf("expected deduplicated members [mbr_x mbr_y]; got %v", g.MemberIDs)
	}
}

// TestFoldGroupOrderIsFirstOccurrence verifies groups come back in the order
// each value first appeared, not sorted and not by count.
func TestFoldGroupOrderIsFirstOccurrence(t *testing.T) {
	groups := Fold([]models.Reaction{
		rx("mbr_x", "🎉"),
		rx("mbr_y", "👍"),
		rx("mbr_z", "👍"),
		rx("mbr_x", "❤️"),
		rx("mbr_y", "🎉"),
	})
	want := []string{"🎉", "👍", "❤️"}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups; got %d", len(want), len(groups))
	}
	for i, g := range groups {
		if g.Value != want[i] {
			t.Fatalf("group %d: expected %s; got %s", i, want[i], g.Value)
		}
	}
	if groups[0].Count != 2 || groups[1].Count != 2 || groups[2].Count != 1 {
		t.Fatalf("unexpected counts: %+v", groups)
	}
}

// TestFoldMemberOrderWithinGroup verifies member ids keep the order of each
// member's first vote on that value.
func TestFoldMemberOrderWithinGroup(t *testing.T) {
	groups := Fold([]models.Reaction{
		rx("mbr_b", "👀"),
		rx("mbr_a", "👀"),
		rx("mbr_b", "👀"),
	})
	if !reflect.DeepEqual(groups[0].MemberIDs, []string{"mbr_b", "mbr_a"}) {
		t.Fatalf("expected first-vote member order; got %v", groups[0].MemberIDs)
	}
}

// TestFoldEmpty verifies zero rows fold into an empty, non-nil slice so the
// JSON encoding stays [] rather than null.
func TestFoldEmpty(t *testing.T) {
	groups := Fold(nil)
	if groups == nil {
		t.Fatalf("expected non-nil empty slice")
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups; got %d", len(groups))
	}
}
