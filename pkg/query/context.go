package query

import (
	"errors"
	"fmt"

	"chatstore/pkg/store"
)

// PageContext is the tagged context discriminator: exactly one field is
// set. Modeling it this way makes "none set" and "two set" unrepresentable
// past Validate, instead of three nullable fields drifting apart.
type PageContext struct {
	ChannelID       string
	ConversationID  string
	ParentMessageID string
}

// ErrBadContext is returned when the discriminator is empty or ambiguous.
var ErrBadContext = errors.New("exactly one of channel, conversation or parent context required")

// ErrParentNotFound is returned when a thread page names an absent parent.
var ErrParentNotFound = errors.New("parent message not found")

// Validate checks the exactly-one invariant.
func (c PageContext) Validate() error {
	n := 0
	if c.ChannelID != "" {
		n++
	}
	if c.ConversationID != "" {
		n++
	}
	if c.ParentMessageID != "" {
		n++
	}
	if n != 1 {
		return ErrBadContext
	}
	return nil
}

// indexKey derives the compound index selector for the context. A thread
// context resolves the parent and inherits its channel or conversation:
// channel-rooted threads key on (channel, parent, -), conversation-rooted
// ones on (-, parent, conversation). Threads attach to the parent's
// context, never recursively to the parent's parent.
func (c PageContext) indexKey() (store.ContextKey, error) {
	switch {
	case c.ChannelID != "":
		return store.ContextKey{ChannelID: c.ChannelID}, nil
	case c.ConversationID != "":
		return store.ContextKey{ConversationID: c.ConversationID}, nil
	default:
		parent, err := store.GetMessage(c.ParentMessageID)
		if errors.Is(err, store.ErrNotFound) {
			return store.ContextKey{}, fmt.Errorf("%s: %w", c.ParentMessageID, ErrParentNotFound)
		}
		if err != nil {
			return store.ContextKey{}, err
		}
		return store.ContextKey{
			ChannelID:      parent.ChannelID,
			ParentID:       parent.ID,
			ConversationID: parent.ConversationID,
		}, nil
	}
}
