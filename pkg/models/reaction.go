package models

// Reaction is one vote by one member on one message. Duplicate rows for the
// same (message, member, value) are allowed in storage; deduplication happens
// in the aggregation layer.
type Reaction struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	MemberID  string `json:"member_id"`
	Value     string `json:"value"`
	CreatedTS int64  `json:"created_ts"`
	Ord       string `json:"ord,omitempty"`
}

// ReactionGroup is the aggregated view of all reactions of one value on one
// message: Count includes duplicate votes, MemberIDs is deduplicated by
// member identity. Groups are emitted in first-occurrence order.
type ReactionGroup struct {
	Value     string   `json:"value"`
	Count     int      `json:"count"`
	MemberIDs []string `json:"member_ids"`
}
