package store

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Key layout. All values are JSON except index entries, whose value is the
// id of the row they point at.
//
//	user:<id>                                user row
//	member:<id>                              member row
//	conv:<id>                                conversation row
//	msg:<id>                                 message row
//	react:<id>                               reaction row
//	idx:ctx:<channel>:<parent>:<conv>:<ord>  compound context index (messages)
//	idx:parent:<parent>:<ord>                parent-only index (replies)
//	idx:react:<message>:<ord>                message-scoped reaction index
//	idx:member:<workspace>:<user>            membership lookup
//	idx:conv:<workspace>:<conv>              workspace conversation listing
//	pair:conv:<workspace>:<lo>:<hi>          canonical unordered member pair
//
// Absent context components use the sentinel so every index key has all
// three segments and an equality-prefix scan selects exactly one context.
const absent = "-"

// seq breaks ties between rows created in the same nanosecond.
var seq uint64

// NewOrd returns a sortable token: zero-padded UTC nanoseconds plus an
// atomic sequence. Lexicographic order equals creation order.
func NewOrd() string {
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	return fmt.Sprintf("%020d-%06d", ts, s)
}

func orAbsent(s string) string {
	if s == "" {
		return absent
	}
	return s
}

func userKey(id string) string   { return "user:" + id }
func memberKey(id string) string { return "member:" + id }
func convKey(id string) string   { return "conv:" + id }
func msgKey(id string) string    { return "msg:" + id }
func reactKey(id string) string  { return "react:" + id }

func ctxIndexKey(channelID, parentID, convID, ord string) string {
	return ctxIndexPrefix(channelID, parentID, convID) + ord
}

func ctxIndexPrefix(channelID, parentID, convID string) string {
	return fmt.Sprintf("idx:ctx:%s:%s:%s:", orAbsent(channelID), orAbsent(parentID), orAbsent(convID))
}

func parentIndexKey(parentID, ord string) string { return parentIndexPrefix(parentID) + ord }
func parentIndexPrefix(parentID string) string   { return "idx:parent:" + parentID + ":" }

func reactIndexKey(messageID, ord string) string { return reactIndexPrefix(messageID) + ord }
func reactIndexPrefix(messageID string) string   { return "idx:react:" + messageID + ":" }

func memberIndexKey(workspaceID, userID string) string {
	return fmt.Sprintf("idx:member:%s:%s", workspaceID, userID)
}

func convIndexKey(workspaceID, convID string) string {
	return fmt.Sprintf("idx:conv:%s:%s", workspaceID, convID)
}

func convIndexPrefix(workspaceID string) string { return "idx:conv:" + workspaceID + ":" }

// convPairKey normalizes the member pair so (A,B) and (B,A) map to the same
// key. The ordering is internally consistent, nothing more.
func convPairKey(workspaceID, memberA, memberB string) string {
	lo, hi := memberA, memberB
	if hi < lo {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("pair:conv:%s:%s:%s", workspaceID, lo, hi)
}

// keyUpperBound returns the smallest key strictly greater than every key
// with prefix b, for use as an exclusive iterator upper bound.
func keyUpperBound(b []byte) []byte {
	end := make([]byte, len(b))
	copy(end, b)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
