// Package uuid wraps github.com/google/uuid behind the one call this
// service needs.
package uuid

import "github.com/google/uuid"

// New returns a random (v4) UUID string.
func New() string {
	return uuid.NewString()
}
