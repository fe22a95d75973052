package domain

import (
	"errors"
	"time"
)

var (
	// ErrGroupNotFound indicates that the group is not found.
	ErrGroupNotFound = errors.New("group not found")
	// ErrNotGroupMember indicates that the user does not belong to the group.
	ErrNotGroupMember = errors.New("not a member of this group")
	// ErrAlreadyGroupMember indicates that the user already belongs to the group.
	ErrAlreadyGroupMember = errors.New("user is already a group member")
	// ErrMemberNotFound indicates that the member is not found in the group.
	ErrMemberNotFound = errors.New("member not found")
	// ErrCannotRemoveSelf indicates an attempt to remove yourself from a group.
	ErrCannotRemoveSelf = errors.New("cannot remove yourself from the group")
)

// Member is a user participating in a group.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Group holds a set of members sharing expenses.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Members   []Member  `json:"members,omitempty"`
}

// CreateGroupParams is the input data to create a group.
type CreateGroupParams struct {
	Name      string
	Currency  string
	CreatedBy int64
}

// IsMember reports whether the user belongs to the member set.
func IsMember(members []Member, userID int64) bool {
	for i := range members {
		if members[i].ID == userID {
			return true
		}
	}

	return false
}

// MemberByEmail returns the member with the given email.
func MemberByEmail(members []Member, email string) (Member, bool) {
	for i := range members {
		if members[i].Email == email {
			return members[i], true
		}
	}

	return Member{}, false
}
