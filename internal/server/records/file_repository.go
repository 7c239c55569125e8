package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/wormkeeper/internal/common"
)

const recordExt = ".json"

// FileRepository keeps one <username>.json file per record in a flat
// directory. Usernames are restricted to [A-Za-z0-9_] by the service layer,
// which is what keeps the filename mapping traversal-safe.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Dir returns the directory holding the record files.
func (r *FileRepository) Dir() string {
	return r.dir
}

func (r *FileRepository) path(username string) string {
	return filepath.Join(r.dir, username+recordExt)
}

func (r *FileRepository) Get(ctx context.Context, username string) (*Record, error) {
	raw, err := os.ReadFile(r.path(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		// permission errors, the path being a directory, etc.
		return nil, fmt.Errorf("%w: %v", common.ErrorInaccessible, err)
	}

	record := &Record{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorCorrupted, err)
	}

	return record, nil
}

func (r *FileRepository) Put(ctx context.Context, username string, record *Record) error {
	if err := os.MkdirAll(r.dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", r.dir, err)
	}

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := os.WriteFile(r.path(username), raw, 0o660); err != nil {
		return fmt.Errorf("write record %s: %w", username, err)
	}

	return nil
}

// List returns the usernames having a record file, in directory order.
// Enumeration failures (including a missing directory) are reported, so
// callers can fail before touching anything.
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", common.ErrorNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInaccessible, err)
	}

	usernames := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		usernames = append(usernames, strings.TrimSuffix(e.Name(), recordExt))
	}

	return usernames, nil
}
