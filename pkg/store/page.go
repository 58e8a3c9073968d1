package store

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"chatstore/pkg/models"

	"github.com/cockroachdb/pebble"
)

// ContextKey selects one message context on the compound index. Absent
// components stay empty; the key builders substitute the sentinel.
type ContextKey struct {
	ChannelID      string
	ParentID       string
	ConversationID string
}

// ErrBadCursor is returned when a continuation cursor does not belong to
// the context being scanned.
var ErrBadCursor = errors.New("invalid cursor")

// MessagePage scans the compound context index newest-first and returns up
// to limit message rows, the continuation cursor, and whether the context
// is exhausted. The cursor encodes the last index key the scan consumed;
// dangling entries (message deleted between index and row read) consume
// their slot but are skipped, so callers may see a slightly shorter page.
func MessagePage(k ContextKey, cursor string, limit int) ([]models.Message, string, bool, error) {
	if db == nil {
		return nil, "", false, errNotReady()
	}
	start := time.Now()
	opsTotal.WithLabelValues("page_scan").Inc()

	prefix := []byte(ctxIndexPrefix(k.ChannelID, k.ParentID, k.ConversationID))
	upper := keyUpperBound(prefix)
	if cursor != "" {
		ck, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", false, err
		}
		if !bytes.HasPrefix(ck, prefix) {
			return nil, "", false, fmt.Errorf("cursor from different context: %w", ErrBadCursor)
		}
		// resume strictly below the last consumed key
		upper = ck
	}

	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, "", false, err
	}
	defer iter.Close()

	out := make([]models.Message, 0, limit)
	var lastKey []byte
	done := true
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if len(out) >= limit {
			done = false
			break
		}
		lastKey = append(lastKey[:0], iter.Key()...)
		m, err := GetMessage(string(iter.Value()))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", false, err
		}
		out = append(out, m)
	}
	if err := iter.Error(); err != nil {
		return nil, "", false, err
	}

	next := ""
	if !done && lastKey != nil {
		next = encodeCursor(lastKey)
	}
	pageScanSeconds.Observe(time.Since(start).Seconds())
	return out, next, done, nil
}

func encodeCursor(key []byte) string {
	return base64.RawURLEncoding.EncodeToString(key)
}

func decodeCursor(cursor string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return b, nil
}
