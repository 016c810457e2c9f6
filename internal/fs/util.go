package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/akeil/notebook/internal/logging"
)

const tempPrefix = ".nb-tmp-"

// IsTemp tells if the file name belongs to a temporary file
// created by WriteFile or WriteReader.
func IsTemp(name string) bool {
	return len(name) >= len(tempPrefix) && name[:len(tempPrefix)] == tempPrefix
}

// WriteFile writes data to a file atomically.
// The data is written to a temporary file in the same directory which is
// then renamed to the target name.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return WriteReader(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}, perm)
}

// WriteReader is like WriteFile, but the content is produced by fn.
func WriteReader(path string, fn func(w io.Writer) error, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	// no-op after a successful rename
	defer os.Remove(tmp.Name())

	err = fn(tmp)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Sync()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	err = os.Chmod(tmp.Name(), perm)
	if err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	return Move(tmp.Name(), path)
}

// Move moves a file from src to dst.
// It tries os.Rename() first and falls back on "copy and delete".
//
// If src cannot be deleted after a successful copy,
// NO error is returned and src remains as it was.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	// Rename may have failed when moving across file systems
	// so try again w/ copy & delete.
	logging.Debug("Rename failed for %v -> %v, fall back on copy and delete", src, dst)
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	if err != nil {
		w.Close()
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}

	// A bit untidy, but we carry on even if we fail to clean up behind us.
	ignoredErr := os.Remove(src)
	if ignoredErr != nil {
		logging.Error("Failed to remove file %v", src)
	}

	return nil
}
