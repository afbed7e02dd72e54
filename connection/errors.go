package connection

import "errors"

var (
	// ErrTimeout is returned when no prompt arrives before the deadline.
	// The session is poisoned afterwards: straggling bytes of the aborted
	// command would be misread as the next command's output.
	ErrTimeout = errors.New("no prompt before deadline")

	// ErrConnectionLost is returned when the stream closes mid-read.
	ErrConnectionLost = errors.New("connection lost")

	// ErrSessionUnusable is returned by Execute after a previous Timeout or
	// ConnectionLost. The caller must discard the session and reconnect.
	ErrSessionUnusable = errors.New("session unusable after previous failure")

	ErrUnsupportedCommandType = errors.New("unsupported command type")
)
