// Package filex provides small filesystem helpers shared by the storage and
// backup layers.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotADirectory is returned by EnsureDir when the path exists but is a
// regular file (or anything else that is not a directory).
var ErrNotADirectory = errors.New("not a directory")

// EnsureDir makes sure dir exists and is a directory, creating it (and any
// missing parents) when absent. Safe to call repeatedly.
func EnsureDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(dir, 0o770); err != nil {
				return fmt.Errorf("mkdir %s: %w", dir, err)
			}
			return nil
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotADirectory)
	}
	return nil
}

// CopyFile copies src to dst wholesale, truncating dst if it already exists.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s -> %s: %w", src, dst, err)
	}

	return out.Close()
}
