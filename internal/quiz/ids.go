package quiz

import "github.com/google/uuid"

// IDGenerator returns a globally unique identifier on every call.
type IDGenerator func() string

// NewID returns a random (v4) UUID string.
func NewID() string {
	return uuid.NewString()
}
