package models

// Message is a single chat message. Exactly one of ChannelID or
// ConversationID is set on a top-level message; a reply additionally sets
// ParentID and inherits the parent's channel/conversation context.
type Message struct {
	ID             string `json:"id"`
	WorkspaceID    string `json:"workspace_id"`
	MemberID       string `json:"member_id"`
	ChannelID      string `json:"channel_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	ParentID       string `json:"parent_message_id,omitempty"`
	// Body is an opaque text blob; clients own its format.
	Body string `json:"body"`
	// Image is an opaque storage reference, resolved to a display URL at read time.
	Image     string `json:"image,omitempty"`
	CreatedTS int64  `json:"created_ts"`
	UpdatedTS int64  `json:"updated_ts,omitempty"`
	// Ord is the sortable token assigned at insert. It is embedded in every
	// index key for this row so deletes can locate and remove them.
	Ord string `json:"ord,omitempty"`
}

// TopLevel reports whether the message is a thread root candidate rather
// than a reply.
func (m Message) TopLevel() bool { return m.ParentID == "" }
