package validation

import (
	"strings"
	"testing"

	"chatstore/pkg/models"
)

func baseMessage() models.Message {
	return models.Message{WorkspaceID: "ws1", MemberID: "mbr_1", ChannelID: "ch1", Body: "hello"}
}

// TestValidateMessageContextRule covers the exactly-one-context rule for
// top-level messages and its suspension for replies.
func TestValidateMessageContextRule(t *testing.T) {
	m := baseMessage()
	if err := ValidateMessage(m); err != nil {
		t.Fatalf("valid channel message rejected: %v", err)
	}

	m = baseMessage()
	m.ChannelID = ""
	m.ConversationID = "cnv_1"
	if err := ValidateMessage(m); err != nil {
		t.Fatalf("valid conversation message rejected: %v", err)
	}

	m = baseMessage()
	m.ChannelID = ""
	if err := ValidateMessage(m); err == nil {
		t.Fatalf("expected rejection with no context")
	}

	m = baseMessage()
	m.ConversationID = "cnv_1"
	if err := ValidateMessage(m); err == nil {
		t.Fatalf("expected rejection with both contexts")
	}

	// a reply carries no explicit context of its own
	m = baseMessage()
	m.ChannelID = ""
	m.ParentID = "msg_parent"
	if err := ValidateMessage(m); err != nil {
		t.Fatalf("contextless reply rejected: %v", err)
	}
}

// TestValidateMessageBodyRules covers the body presence and size limits.
func TestValidateMessageBodyRules(t *testing.T) {
	SetRules(Rules{MaxBodyBytes: 16})
	t.Cleanup(func() { SetRules(Rules{MaxBodyBytes: 64 * 1024}) })

	m := baseMessage()
	m.Body = "   "
	if err := ValidateMessage(m); err == nil {
		t.Fatalf("expected rejection of blank body")
	}

	m = baseMessage()
	m.Body = strings.Repeat("x", 17)
	if err := ValidateMessage(m); err == nil {
		t.Fatalf("expected rejection of oversized body")
	}

	m = baseMessage()
	m.Body = strings.Repeat("x", 16)
	if err := ValidateMessage(m); err != nil {
		t.Fatalf("body at the limit rejected: %v", err)
	}
}

// TestValidateMessageRequiredIDs covers the workspace and member presence
// checks.
func TestValidateMessageRequiredIDs(t *testing.T) {
	m := baseMessage()
	m.WorkspaceID = ""
	if err := ValidateMessage(m); err == nil {
		t.Fatalf("expected rejection without workspace")
	}
	m = baseMessage()
	m.MemberID = ""
	if err := ValidateMessage(m); err == nil {
		t.Fatalf("expected rejection without member")
	}
}

// TestValidateReactionValue covers the enumerated symbol set, default and
// configured.
func TestValidateReactionValue(t *testing.T) {
	if err := ValidateReactionValue("👍"); err != nil {
		t.Fatalf("default value rejected: %v", err)
	}
	if err := ValidateReactionValue("nope"); err == nil {
		t.Fatalf("expected rejection of free text")
	}

	SetRules(Rules{ReactionValues: []string{"⭐"}})
	t.Cleanup(func() {
		SetRules(Rules{ReactionValues: []string{"👍", "👎", "❤️", "😂", "😮", "😢", "🎉", "👀"}})
	})
	if err := ValidateReactionValue("⭐"); err != nil {
		t.Fatalf("configured value rejected: %v", err)
	}
	if err := ValidateReactionValue("👍"); err == nil {
		t.Fatalf("expected rejection of value outside the configured set")
	}
}
