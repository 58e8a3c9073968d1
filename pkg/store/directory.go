package store

import (
	"errors"

	"chatstore/pkg/logger"
	"chatstore/pkg/models"
)

// SaveUser inserts or replaces a user row. The user directory is externally
// owned; this is its ingestion surface.
func SaveUser(u models.User) error {
	if err := setJSON(userKey(u.ID), u); err != nil {
		return err
	}
	logger.Debug("user_saved", "id", u.ID)
	return nil
}

// GetUser returns the user row or ErrNotFound.
func GetUser(id string) (models.User, error) {
	var u models.User
	if err := getJSON(userKey(id), &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SaveMember inserts or replaces a member row and its (workspace, user)
// lookup entry.
func SaveMember(m models.Member) error {
	if err := setJSON(memberKey(m.ID), m); err != nil {
		return err
	}
	if err := set(memberIndexKey(m.WorkspaceID, m.UserID), []byte(m.ID)); err != nil {
		return err
	}
	logger.Debug("member_saved", "id", m.ID, "workspace", m.WorkspaceID)
	return nil
}

// GetMember returns the member row or ErrNotFound.
func GetMember(id string) (models.Member, error) {
	var m models.Member
	if err := getJSON(memberKey(id), &m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// MemberIDByWorkspaceUser resolves the single membership of a user in a
// workspace, or ErrNotFound.
func MemberIDByWorkspaceUser(workspaceID, userID string) (string, error) {
	v, err := get(memberIndexKey(workspaceID, userID))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// MemberByWorkspaceUser is MemberIDByWorkspaceUser plus the row load.
func MemberByWorkspaceUser(workspaceID, userID string) (models.Member, error) {
	id, err := MemberIDByWorkspaceUser(workspaceID, userID)
	if err != nil {
		return models.Member{}, err
	}
	m, err := GetMember(id)
	if errors.Is(err, ErrNotFound) {
		// dangling lookup entry; treat the membership as absent
		return models.Member{}, err
	}
	return m, err
}
