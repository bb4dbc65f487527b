// Package storage provides the record store backing the AuthBox façade:
// verification logs and kiosk user accounts. In-flight kiosk sessions are
// deliberately never stored here; only the server-side log survives.
package storage

import "errors"

// ErrNotFound is returned when no record exists under the given key.
var ErrNotFound = errors.New("record not found")

// Record types currently persisted.
const (
	RecordTypeLog  = "LOG"
	RecordTypeUser = "USER"
)

// Repository stores JSON-encoded records grouped by type.
type Repository interface {
	Put(recordType, recordID string, data []byte) error
	Get(recordType, recordID string) ([]byte, error)
	List(recordType string) ([]string, error)
	Delete(recordType, recordID string) error
}
