// Package records implements the persistent per-user record store. One
// registered username maps to exactly one record.
package records

import (
	"encoding/json"
	"time"
)

// Record is the persisted unit for one user: the password hash, the opaque
// game-state blob owned by the client, and the registration timestamp.
//
// Data is stored and returned verbatim; the store never interprets its
// contents.
type Record struct {
	PasswordHash string          `json:"passwordHash"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"createdAt"`
}
