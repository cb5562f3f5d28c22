package pipeline

import "github.com/google/uuid"

// newRunID returns a UUIDv7, so IDs sort by creation time.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
