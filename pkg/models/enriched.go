package models

// ThreadSummary is the reply rollup attached to a thread root. The zero
// value doubles as the "no thread" sentinel: {count:0, name:"", image:"",
// timestamp:0}.
type ThreadSummary struct {
	Count     int    `json:"count"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// EnrichedMessage is a message joined with its author identity, aggregated
// reactions, resolved image URL and (on list pages) its thread rollup.
type EnrichedMessage struct {
	Message
	Member    Member          `json:"member"`
	User      User            `json:"user"`
	Reactions []ReactionGroup `json:"reactions"`
	ImageURL  string          `json:"image_url,omitempty"`
	Thread    *ThreadSummary  `json:"thread,omitempty"`
}

// Page is one page of enriched messages plus the continuation cursor.
type Page struct {
	Messages   []EnrichedMessage `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
	IsDone     bool              `json:"is_done"`
}
