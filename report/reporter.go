package report

import (
	"fmt"
	"os"
	"sync"
)

// Reporter is responsible for reporting fatal conditions to the user.  The
// reporter is synchronized: its methods can be safely called from multiple
// worker goroutines.
type Reporter struct {
	// The mutex used to synchronize reporting calls.
	m *sync.Mutex

	// The cleanup handlers to run before the process terminates.  Handlers
	// run in reverse registration order so that later, more deeply nested
	// resources are released first.
	cleanups []func()
}

// Exit codes for the two fatal channels.  An internal error must exit with a
// code distinct from an ordinary failure so that build drivers can tell a
// bridge bug apart from bad input.
const (
	FatalExitCode = 1
	ICEExitCode   = -1
)

// rep is the global reporter instance.
var rep *Reporter

// osExit is swappable so the exit path is testable.
var osExit = os.Exit

// Init initializes the global reporter.  If the reporter has already been
// initialized, this function does nothing: the fatal handler is installed
// once per process.
func Init() {
	if rep == nil {
		rep = &Reporter{m: &sync.Mutex{}}
	}
}

// AtExit registers a cleanup handler to run before either fatal channel
// terminates the process.
func AtExit(f func()) {
	Init()

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.cleanups = append(rep.cleanups, f)
}

// runCleanups runs all registered cleanup handlers in reverse order.
func runCleanups() {
	for i := len(rep.cleanups) - 1; i >= 0; i-- {
		rep.cleanups[i]()
	}
}

// -----------------------------------------------------------------------------

// ICE reports an internal compiler error.  These are errors that result from a
// bug or violated invariant inside the bridge: an unrecognized enum value, a
// half-built instruction graph, a metadata tree in an impossible state.  They
// are never recoverable: continuing to compile after one would emit code from
// broken state, so the process terminates immediately after the registered
// cleanup handlers have run.
func ICE(message string, args ...interface{}) {
	Init()

	rep.m.Lock()
	defer rep.m.Unlock()

	displayICE(fmt.Sprintf(message, args...))
	runCleanups()

	osExit(ICEExitCode)
}

// Fatal reports a fatal error.  These are errors that should cause all
// compilation to stop immediately but are expected in the environment:
// missing tools, unwritable output paths, and the like.
func Fatal(message string, args ...interface{}) {
	Init()

	rep.m.Lock()
	defer rep.m.Unlock()

	displayFatal(fmt.Sprintf(message, args...))
	runCleanups()

	osExit(FatalExitCode)
}
