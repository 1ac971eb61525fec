package deck

import "errors"

var (
	// ErrIndexOutOfRange is returned for indices outside [0, N-1].
	ErrIndexOutOfRange = errors.New("deck: index out of range")
	// ErrCapturePending means the page's capture has not finished yet.
	// Callers render the page blank until it is ready.
	ErrCapturePending = errors.New("deck: capture pending")
	// ErrCaptureFailed means the capture collaborator returned no bitmap.
	// The page stays blank; it is never retried.
	ErrCaptureFailed = errors.New("deck: capture failed")
	// ErrInvalid reports a deck that cannot be constructed.
	ErrInvalid = errors.New("deck: invalid deck")
)
