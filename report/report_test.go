package report

import (
	"os"
	"testing"
)

func TestLastErrorClearOnRead(t *testing.T) {
	if msg := TakeLastError(); msg != "" {
		t.Fatalf("expected empty slot before any failure, got %q", msg)
	}

	SetLastError("no such file: libfoo.rlib")

	if msg := TakeLastError(); msg != "no such file: libfoo.rlib" {
		t.Fatalf("expected stored message, got %q", msg)
	}

	if msg := TakeLastError(); msg != "" {
		t.Fatalf("expected slot cleared after read, got %q", msg)
	}
}

func TestLastErrorOverwrite(t *testing.T) {
	SetLastError("first")
	SetLastError("second")

	if msg := TakeLastError(); msg != "second" {
		t.Fatalf("expected most recent message, got %q", msg)
	}
}

func TestICEExitCodeAndCleanups(t *testing.T) {
	exitCode := 0
	osExit = func(code int) { exitCode = code }
	defer func() { osExit = os.Exit }()

	var order []string
	AtExit(func() { order = append(order, "outer") })
	AtExit(func() { order = append(order, "inner") })

	ICE("unknown linkage value: %d", 42)

	if exitCode != ICEExitCode {
		t.Fatalf("expected exit code %d, got %d", ICEExitCode, exitCode)
	}

	// Cleanups run in reverse registration order.
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Fatalf("unexpected cleanup order: %v", order)
	}
}

func TestFatalExitCode(t *testing.T) {
	exitCode := 0
	osExit = func(code int) { exitCode = code }
	defer func() { osExit = os.Exit }()

	Init()
	rep.cleanups = nil

	Fatal("backend version unavailable")

	if exitCode != FatalExitCode {
		t.Fatalf("expected exit code %d, got %d", FatalExitCode, exitCode)
	}
}
