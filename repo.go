package wirehttp

import (
	"context"
	"io"
)

// FileStorage defines the interface for the working-directory file operations
// used by the /files routes.
//
// All methods accept a context for cancellation. Implementations must be safe
// for concurrent use; concurrent writes to the same name race at the storage
// layer and the last rename wins.
type FileStorage interface {
	// Get opens the named file for reading.
	//
	// Returns:
	//   - io.ReadSeekCloser: Reader for file content
	//   - error: ErrNotFound if the file does not exist, or other storage errors
	//
	// The caller is responsible for closing the returned ReadSeekCloser.
	Get(ctx context.Context, name string) (io.ReadSeekCloser, error)

	// Write stores content under name, replacing any existing file.
	//
	// Returns:
	//   - SaveResult: bytes written and the content etag
	//   - error: Any storage error
	Write(ctx context.Context, name string, content io.Reader) (SaveResult, error)
}
