// Package reactions folds raw reaction rows into the grouped, counted
// summaries clients render.
package reactions

import (
	"chatstore/pkg/models"
	"chatstore/pkg/store"
)

// Collect loads all raw reaction rows for a message and groups them by
// value in a single pass. Count includes every vote, duplicates included;
// MemberIDs is deduplicated by member identity. Group order is the
// insertion order of each value's first occurrence, which clients rely on
// for stable rendering. Zero reactions yields an empty slice, never nil.
func Collect(messageID string) ([]models.ReactionGroup, error) {
	rows, err := store.ReactionsByMessage(messageID)
	if err != nil {
		return nil, err
	}
	return Fold(rows), nil
}

// Fold groups raw rows without touching the store. Split out so the
// aggregation semantics are testable on plain slices.
func Fold(rows []models.Reaction) []models.ReactionGroup {
	groups := make([]models.ReactionGroup, 0, len(rows))
	byValue := make(map[string]int, len(rows))
	seen := make(map[string]map[string]struct{}, len(rows))
	for _, rx := range rows {
		i, ok := byValue[rx.Value]
		if !ok {
			i = len(groups)
			byValue[rx.Value] = i
			groups = append(groups, models.ReactionGroup{Value: rx.Value, MemberIDs: []string{}})
			seen[rx.Value] = make(map[string]struct{})
		}
		groups[i].Count++
		if _, dup := seen[rx.Value][rx.MemberID]; !dup {
			seen[rx.Value][rx.MemberID] = struct{}{}
			groups[i].MemberIDs = append(groups[i].MemberIDs, rx.MemberID)
		}
	}
	return groups
}
