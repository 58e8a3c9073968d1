package validation

import (
	"errors"
	"fmt"
	"strings"

	"chatstore/pkg/models"
)

// Rules hold config-driven validation limits. Reaction values are a small
// enumerated symbol set, not free text; the default set mirrors what the
// client renders.
type Rules struct {
	MaxBodyBytes   int
	ReactionValues []string
}

var rules = Rules{
	MaxBodyBytes:   64 * 1024,
	ReactionValues: []string{"👍", "👎", "❤️", "😂", "😮", "😢", "🎉", "👀"},
}

// SetRules installs validation rules; zero/empty fields keep the defaults.
func SetRules(r Rules) {
	if r.MaxBodyBytes > 0 {
		rules.MaxBodyBytes = r.MaxBodyBytes
	}
	if len(r.ReactionValues) > 0 {
		rules.ReactionValues = append([]string{}, r.ReactionValues...)
	}
}

// ValidateMessage checks the creation invariants: a body, a workspace, and
// exactly one of channel/conversation unless the message is a reply (a
// reply carries no explicit context and inherits the parent's).
func ValidateMessage(m models.Message) error {
	var errs []string
	if strings.TrimSpace(m.Body) == "" {
		errs = append(errs, "body is required")
	}
	if len(m.Body) > rules.MaxBodyBytes {
		errs = append(errs, fmt.Sprintf("body exceeds %d bytes", rules.MaxBodyBytes))
	}
	if m.WorkspaceID == "" {
		errs = append(errs, "workspace_id is required")
	}
	if m.MemberID == "" {
		errs = append(errs, "member_id is required")
	}
	if m.ParentID == "" {
		set := 0
		if m.ChannelID != "" {
			set++
		}
		if m.ConversationID != "" {
			set++
		}
		if set != 1 {
			errs = append(errs, "exactly one of channel_id or conversation_id is required")
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateReactionValue checks the value against the configured symbol set.
func ValidateReactionValue(v string) error {
	for _, allowed := range rules.ReactionValues {
		if v == allowed {
			return nil
		}
	}
	return fmt.Errorf("reaction value %q is not in the allowed set", v)
}
