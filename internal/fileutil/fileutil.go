package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTooLarge is returned when a stream exceeds the permitted size.
var ErrTooLarge = errors.New("content exceeds size limit")

// Written describes a content-addressed file.
type Written struct {
	Path   string
	SHA256 string
	Size   int64
}

// WriteContentAddressed streams r into dir, naming the file after the SHA-256
// of its content plus ext. The content is staged in a temp file in the same
// directory and renamed into place, so readers never observe a partial file.
// When a file with the same hash already exists the staged copy is discarded.
// A limit > 0 caps the number of bytes accepted.
func WriteContentAddressed(dir string, r io.Reader, limit int64, ext string) (Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return Written{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), src)
	if err != nil {
		return Written{}, fmt.Errorf("write content: %w", err)
	}
	if limit > 0 && written > limit {
		return Written{}, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	if err := tmp.Sync(); err != nil {
		return Written{}, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Written{}, fmt.Errorf("close temp file: %w", err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	dst := filepath.Join(dir, sum+ext)
	if _, err := os.Stat(dst); err == nil {
		return Written{Path: dst, SHA256: sum, Size: written}, nil
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return Written{}, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return Written{}, fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return Written{Path: dst, SHA256: sum, Size: written}, nil
}
