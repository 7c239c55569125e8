package records

import (
	"context"
)

// Repository is the storage contract for user records. Implementations must
// classify read failures with the common sentinels:
//
//   - common.ErrorNotFound: no record for that username
//   - common.ErrorCorrupted: the stored payload cannot be parsed
//   - common.ErrorInaccessible: the storage location cannot be read
//     (permissions, wrong type, ...)
//
// Put overwrites unconditionally, creating the storage location if needed.
type Repository interface {
	Get(ctx context.Context, username string) (*Record, error)
	Put(ctx context.Context, username string, record *Record) error
	List(ctx context.Context) ([]string, error)
}
