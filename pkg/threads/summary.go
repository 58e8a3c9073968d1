// Package threads derives reply rollups for thread roots.
package threads

import (
	"errors"

	"chatstore/pkg/identity"
	"chatstore/pkg/models"
	"chatstore/pkg/store"
)

// Summarize scans the direct replies of a message and derives its rollup:
// total reply count plus a preview of the latest replier. No replies yields
// the zero sentinel {count:0, name:"", image:"", timestamp:0}.
//
// When the latest reply's member or user cannot be resolved the same zero
// sentinel comes back, discarding the true count. That conflates "no
// thread" with "preview unavailable"; it is kept for compatibility with the
// behavior clients already handle (see DESIGN.md).
//
// The timestamp is the previewed user's identity creation time, not the
// reply's; clients key avatar refreshes off it.
func Summarize(messageID string, ids *identity.Cache) (models.ThreadSummary, error) {
	replies, err := store.RepliesByParent(messageID)
	if err != nil {
		return models.ThreadSummary{}, err
	}
	if len(replies) == 0 {
		return models.ThreadSummary{}, nil
	}

	last := replies[len(replies)-1]
	member, err := ids.Member(last.MemberID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ThreadSummary{}, nil
	}
	if err != nil {
		return models.ThreadSummary{}, err
	}
	user, err := ids.User(member.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ThreadSummary{}, nil
	}
	if err != nil {
		return models.ThreadSummary{}, err
	}

	return models.ThreadSummary{
		Count:     len(replies),
		Name:      user.Name,
		Image:     user.Image,
		Timestamp: user.CreatedTS,
	}, nil
}
