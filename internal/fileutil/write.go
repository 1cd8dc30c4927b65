package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/zksupervisor/internal/sentinel"
)

// ErrEmptyDst is returned when a destination path is empty.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

// WriteFileOptions configures file write behavior.
type WriteFileOptions struct {
	Mode   *os.FileMode // Optional: permissions of the written file (default 0644)
	Sync   bool         // If true, call Sync() before closing dst
	Atomic bool         // If true, write to a temp file then rename to dst (prevents partial reads)
}

// WriteFile writes data to dst, creating parent directories as needed and
// replacing any existing file. If opts is nil the write is a plain truncate
// and write.
//
// When opts.Atomic is true, data is written to a temporary file in the same
// directory as dst and then renamed over it. On POSIX systems rename is
// atomic, so a concurrent reader sees either the old or the new content.
func WriteFile(dst string, data []byte, opts *WriteFileOptions) (retErr error) {
	if dst == "" {
		return ErrEmptyDst
	}

	if err := EnsureDirForFile(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	var o WriteFileOptions
	if opts != nil {
		o = *opts
	}

	f, writePath, err := openDstFile(dst, resolveFileMode(&o), o.Atomic)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil && writePath != dst {
			_ = os.Remove(writePath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}

	return finalizeWrite(f, writePath, dst, o.Sync || o.Atomic)
}

// finalizeWrite syncs (if requested), closes, and renames the written file.
func finalizeWrite(f *os.File, writePath, dst string, doSync bool) error {
	// fsync before rename: without it a crash could leave the renamed file
	// with incomplete contents.
	if doSync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("sync: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	if writePath != dst {
		if err := os.Rename(writePath, dst); err != nil {
			return fmt.Errorf("rename temp file to destination: %w", err)
		}
	}

	return nil
}

// resolveFileMode returns the file mode from opts, defaulting to 0o644.
func resolveFileMode(opts *WriteFileOptions) os.FileMode {
	if opts.Mode != nil {
		return *opts.Mode
	}
	return 0o644
}

// openDstFile opens the file that receives the data. When atomic is true it
// is a temp file next to dst with the final permissions already applied.
func openDstFile(dst string, mode os.FileMode, atomic bool) (*os.File, string, error) {
	if atomic {
		tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".tmp-"+filepath.Base(dst)+"-*")
		if err != nil {
			return nil, "", fmt.Errorf("create temp file: %w", err)
		}
		writePath := tmpFile.Name()
		if err := tmpFile.Chmod(mode); err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(writePath)
			return nil, "", fmt.Errorf("chmod temp file: %w", err)
		}
		return tmpFile, writePath, nil
	}

	f, err := os.OpenFile( //nolint:gosec // G304: paths come from supervisor configuration
		dst,
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
		mode,
	)
	if err != nil {
		return nil, "", fmt.Errorf("create destination: %w", err)
	}
	return f, dst, nil
}
