// Package backup copies the whole record collection between the live
// directory and the backup directory, in either direction. Copies are
// per-record and concurrent; there is no cross-record transaction, only the
// guarantee that a failed directory listing stops the operation before any
// copy starts.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/wormkeeper/internal/filex"
	"github.com/dmitrijs2005/wormkeeper/internal/logging"
)

const recordExt = ".json"

// Mirror receives a copy of every record file after a successful local
// backup. Implementations push to off-host storage (S3 and friends).
type Mirror interface {
	Upload(ctx context.Context, name string, body io.Reader) error
}

type Service struct {
	usersDir  string
	backupDir string
	mirror    Mirror // nil disables mirroring
	logger    logging.Logger
}

func NewService(usersDir, backupDir string, mirror Mirror, logger logging.Logger) *Service {
	return &Service{
		usersDir:  usersDir,
		backupDir: backupDir,
		mirror:    mirror,
		logger:    logger.With("module", "backup"),
	}
}

func listRecordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// copyAll copies every record file from srcDir to dstDir concurrently and
// returns how many copies completed. A copy failure aborts the remaining
// copies but already-finished ones stay in place.
func (s *Service) copyAll(ctx context.Context, srcDir, dstDir string, files []string) (int, error) {
	var copied atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := filex.CopyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
				return err
			}
			copied.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(copied.Load()), err
	}
	return int(copied.Load()), nil
}

// BackupAll copies every live record into the backup directory, overwriting
// prior backups of the same usernames, then pushes the files to the mirror
// when one is configured. Mirror failures are logged and do not fail the
// backup.
func (s *Service) BackupAll(ctx context.Context) (int, error) {
	files, err := listRecordFiles(s.usersDir)
	if err != nil {
		return 0, err
	}

	if err := filex.EnsureDir(s.backupDir); err != nil {
		return 0, err
	}

	count, err := s.copyAll(ctx, s.usersDir, s.backupDir, files)
	if err != nil {
		return count, err
	}

	if s.mirror != nil {
		for _, name := range files {
			if err := s.uploadToMirror(ctx, name); err != nil {
				s.logger.Warn(ctx, "mirror upload failed", "file", name, "error", err.Error())
			}
		}
	}

	return count, nil
}

func (s *Service) uploadToMirror(ctx context.Context, name string) error {
	f, err := os.Open(filepath.Join(s.backupDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return s.mirror.Upload(ctx, name, f)
}

// RestoreAll copies every backed-up record into the (recreated-if-missing)
// live directory, overwriting live records with the backup's versions.
func (s *Service) RestoreAll(ctx context.Context) (int, error) {
	files, err := listRecordFiles(s.backupDir)
	if err != nil {
		return 0, err
	}

	if err := filex.EnsureDir(s.usersDir); err != nil {
		return 0, err
	}

	return s.copyAll(ctx, s.backupDir, s.usersDir, files)
}
