// Package filesystem provides the working-directory storage behind the
// /files routes. All access goes through an os.Root so names cannot escape
// the directory, and writes are atomic via a temp file and rename.
//
// Temp files live under StagingDir, which Get and Write refuse to address,
// so a partial upload is never readable by name.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/wirehttp"
)

// StagingDir holds in-progress uploads inside the working directory.
const StagingDir = ".uploads"

// isStaged reports whether name resolves into StagingDir.
func isStaged(name string) bool {
	clean := filepath.ToSlash(filepath.Clean(name))
	return clean == StagingDir || strings.HasPrefix(clean, StagingDir+"/")
}

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Open creates the directory if needed and returns a Store rooted at it,
// along with a function that releases the root.
func Open(dir string) (*Store, func() error, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create working directory: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open working directory: %w", err)
	}
	return NewFileStorage(root), root.Close, nil
}

// Get opens a file for reading. Returns wirehttp.ErrNotFound if the file does
// not exist or names a directory.
func (s *Store) Get(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if isStaged(name) {
		return nil, wirehttp.ErrNotFound
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, wirehttp.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, wirehttp.ErrNotFound
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to name using a temp file and rename.
// It creates intermediate directories as needed and returns the number of
// bytes written and a SHA256-based etag. The operation respects context
// cancellation.
func (s *Store) Write(ctx context.Context, name string, content io.Reader) (wirehttp.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return wirehttp.SaveResult{}, ctxErr
	}

	if isStaged(name) {
		return wirehttp.SaveResult{}, fmt.Errorf("write %q: %w", name, wirehttp.ErrInvalidInput)
	}

	if err := s.root.MkdirAll(StagingDir, 0o750); err != nil {
		return wirehttp.SaveResult{}, fmt.Errorf("could not create staging directory: %w", err)
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return wirehttp.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(h, t), &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return wirehttp.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return wirehttp.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if dir := filepath.Dir(name); dir != "." {
		if err := s.root.MkdirAll(dir, 0o755); err != nil {
			return wirehttp.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if err := s.root.Rename(tmpFile, name); err != nil {
		return wirehttp.SaveResult{}, fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return wirehttp.SaveResult{BytesWritten: n, Etag: hex.EncodeToString(h.Sum(nil))}, nil
}

func tmpFileName() string {
	return StagingDir + "/" + uuid.New().String()
}
