package utils

import "github.com/google/uuid"

// NewID returns a fresh record identifier. Every table and blob reference in
// the catalog uses the same uuid string format.
func NewID() string {
	return uuid.NewString()
}
