package identity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates the two possible owners of cart and wishlist rows.
type Kind int

const (
	KindSession Kind = iota + 1
	KindUser
)

const (
	sessionKeyPrefix = "s:"
	userKeyPrefix    = "u:"
)

// Identity is a tagged union: a row is owned by an anonymous browser
// session or by an authenticated user, never both and never neither.
// The zero value is invalid; construct via Session or User.
type Identity struct {
	kind      Kind
	sessionID string
	userID    uuid.UUID
}

// Session builds the identity of an anonymous browser session.
func Session(sessionID string) (Identity, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Identity{}, fmt.Errorf("identity: session id is empty")
	}
	return Identity{kind: KindSession, sessionID: sessionID}, nil
}

// User builds the identity of an authenticated user.
func User(userID uuid.UUID) (Identity, error) {
	if userID == uuid.Nil {
		return Identity{}, fmt.Errorf("identity: user id is nil")
	}
	return Identity{kind: KindUser, userID: userID}, nil
}

// Kind returns the discriminator.
func (i Identity) Kind() Kind {
	return i.kind
}

// IsZero reports whether the identity was never constructed.
func (i Identity) IsZero() bool {
	return i.kind == 0
}

// IsUser reports whether the identity belongs to an authenticated user.
func (i Identity) IsUser() bool {
	return i.kind == KindUser
}

// SessionID returns the session id; ok is false for user identities.
func (i Identity) SessionID() (string, bool) {
	return i.sessionID, i.kind == KindSession
}

// UserID returns the user id; ok is false for session identities.
func (i Identity) UserID() (uuid.UUID, bool) {
	return i.userID, i.kind == KindUser
}

// OwnerKey serializes the identity into the single owning column shared by
// cart_items and wishlist_items. The prefix keeps the two namespaces from
// ever colliding.
func (i Identity) OwnerKey() string {
	switch i.kind {
	case KindSession:
		return sessionKeyPrefix + i.sessionID
	case KindUser:
		return userKeyPrefix + i.userID.String()
	default:
		return ""
	}
}

// String implements fmt.Stringer for log output.
func (i Identity) String() string {
	return i.OwnerKey()
}

// ParseOwnerKey reverses OwnerKey.
func ParseOwnerKey(key string) (Identity, error) {
	switch {
	case strings.HasPrefix(key, sessionKeyPrefix):
		return Session(strings.TrimPrefix(key, sessionKeyPrefix))
	case strings.HasPrefix(key, userKeyPrefix):
		id, err := uuid.Parse(strings.TrimPrefix(key, userKeyPrefix))
		if err != nil {
			return Identity{}, fmt.Errorf("identity: parse owner key: %w", err)
		}
		return User(id)
	default:
		return Identity{}, fmt.Errorf("identity: malformed owner key %q", key)
	}
}
