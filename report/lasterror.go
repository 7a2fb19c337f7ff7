package report

import "sync"

// The last-error slot holds the message of the most recent recoverable
// failure that had no richer channel to travel through: a missing archive on
// the first build, an unreadable member file, and so on.  It is a
// compatibility shim over idiomatic (value, error) returns; new callers
// should prefer the error return of the failing call.
//
// The slot is overwritten on every failing call and transferred to the
// caller on read: reading it a second time without a new failure yields the
// empty string.  It is a single process-wide slot, not per goroutine: a
// failure on one goroutine can overwrite an unread message from another, so
// concurrent callers must not rely on it and should use the error returns.
var (
	lastErrMu sync.Mutex
	lastErr   string
)

// SetLastError records msg as the most recent recoverable failure.
func SetLastError(msg string) {
	lastErrMu.Lock()
	lastErr = msg
	lastErrMu.Unlock()
}

// TakeLastError returns the most recent recoverable failure message and
// clears the slot.  It returns "" if no failure occurred since the last read.
func TakeLastError() string {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()

	msg := lastErr
	lastErr = ""
	return msg
}
