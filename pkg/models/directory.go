package models

// Role is a member's role within a workspace.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member ties a user to a workspace. One membership per (workspace, user)
// pair, enforced by lookup rather than a storage constraint.
type Member struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Role        Role   `json:"role"`
}

// User is the identity-resolution target. The directory is externally owned;
// this store only reads it when enriching messages.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedTS int64  `json:"created_ts"`
}

// Conversation is a 1:1 conversation between two members of a workspace.
// The (MemberOneID, MemberTwoID) ordering is canonical but not meaningful:
// (A,B) and (B,A) denote the same conversation.
type Conversation struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	MemberOneID string `json:"member_one_id"`
	MemberTwoID string `json:"member_two_id"`
	CreatedTS   int64  `json:"created_ts"`
}
