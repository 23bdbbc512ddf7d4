package utils

import (
	"github.com/google/uuid"
)

const idLength = 36

// GenerateID returns a new random (v4) UUID in canonical form.
func GenerateID() string {
	return uuid.NewString()
}

// ValidateID reports whether id is a hyphenated UUID the store can hold.
// uuid.Parse also accepts urn and braced forms; those are rejected here.
func ValidateID(id string) bool {
	if len(id) != idLength {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// CanonicalID returns id in the lower-case form Postgres echoes back for UUID
// columns. Ids that do not pass ValidateID are returned unchanged.
func CanonicalID(id string) string {
	if !ValidateID(id) {
		return id
	}
	return uuid.MustParse(id).String()
}
