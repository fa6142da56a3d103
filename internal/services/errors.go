package services

import "errors"

var (
	// ErrNotFound means the referenced post id is not in the collection.
	ErrNotFound = errors.New("post not found")
	// ErrStorageWrite marks a failed persist. The in-memory change stands;
	// callers surface it as a warning.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrEncoding means an attached image could not be read.
	ErrEncoding = errors.New("image encoding failed")
	// ErrClipboard means the share link could not be copied automatically.
	ErrClipboard = errors.New("clipboard unavailable")
	// ErrInvalidVote is returned for a vote direction other than up or down.
	ErrInvalidVote = errors.New("invalid vote direction")
)

// IsWarning reports whether err only carries non-fatal conditions, so the
// action it came from still succeeded.
func IsWarning(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEncoding) || errors.Is(err, ErrInvalidVote) {
		return false
	}
	return errors.Is(err, ErrStorageWrite) || errors.Is(err, ErrClipboard)
}
