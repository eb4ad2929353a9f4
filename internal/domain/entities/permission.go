package entities

import "time"

// PermissionLevel is the graded access a grant gives a non-owner user.
// Levels form a total order: read < readwrite < owner. A grant-level "owner"
// is not the same as the document's owner_id; it never allows deletion or
// grant management, both of which are reserved for the literal owner.
type PermissionLevel string

const (
	PermissionRead      PermissionLevel = "read"
	PermissionReadWrite PermissionLevel = "readwrite"
	PermissionOwner     PermissionLevel = "owner"
)

func (l PermissionLevel) Valid() bool {
	switch l {
	case PermissionRead, PermissionReadWrite, PermissionOwner:
		return true
	}
	return false
}

func (l PermissionLevel) rank() int {
	switch l {
	case PermissionRead:
		return 1
	case PermissionReadWrite:
		return 2
	case PermissionOwner:
		return 3
	}
	return 0
}

// Satisfies reports whether a held level grants the required level.
func (l PermissionLevel) Satisfies(required PermissionLevel) bool {
	return l.rank() >= required.rank()
}

// PermissionGrant is one stored grant row. At most one grant exists per
// (document, user) pair, and the grantee is never the document owner.
type PermissionGrant struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	UserID     string          `json:"user_id"`
	Level      PermissionLevel `json:"permission_level"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
