package util

import (
	"math/rand"

	"github.com/google/uuid"
)

// GetRandomString generates a random string of the given length.
func GetRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// NewPlaceholderID returns a random negative int64 used as a provisional id
// for entities created while the server is unreachable. Server-assigned ids
// are positive, so placeholders can never collide with them; collisions
// between placeholders are accepted as negligible at client scale.
func NewPlaceholderID() int64 {
	n := rand.Int63n(1<<62 - 1)
	return -(n + 1)
}

// NewCid returns a client correlation id. It travels with an entity from the
// moment it is created so a later server-assigned record can be matched back
// to its local placeholder.
func NewCid() string {
	return uuid.NewString()
}
