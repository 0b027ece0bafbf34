package domain

import "github.com/google/uuid"

// UserID uniquely identifies a user within the system.
type UserID uuid.UUID

// ParseUserID parses the textual UUID form of a user ID.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err //nolint: wrapcheck
	}

	return UserID(id), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
