package llvm

import (
	"strings"
	"testing"
)

// unknownDiagnostic is a diagnostic flavor outside the closed taxonomy.
type unknownDiagnostic struct{}

func (unknownDiagnostic) Severity() DiagnosticSeverity { return SeverityNote }
func (unknownDiagnostic) Message() string              { return "novel diagnostic flavor" }

func TestClassifyDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		kind DiagnosticKind
	}{
		{"remark passed", OptimizationDiagnostic{RemarkKind: RemarkPassed}, KindOptimizationRemark},
		{"remark missed", OptimizationDiagnostic{RemarkKind: RemarkMissed}, KindOptimizationRemarkMissed},
		{"remark other", OptimizationDiagnostic{RemarkKind: RemarkOther}, KindOptimizationRemarkOther},
		{"inline asm", InlineAsmDiagnostic{Level: SeverityError}, KindInlineAsm},
		{"stack size", StackSizeDiagnostic{FrameSize: 4096}, KindStackSize},
		{"debug metadata version", DebugMetadataVersionDiagnostic{Version: 2}, KindDebugMetadataVersion},
		{"sample profile", SampleProfileDiagnostic{}, KindSampleProfile},
		{"pgo profile", PGOProfileDiagnostic{}, KindPGOProfile},
		{"linker", LinkerDiagnostic{Level: SeverityWarning}, KindLinker},
		{"source manager", SrcMgrDiagnostic{Level: SeverityError}, KindSrcMgr},
		{"unsupported", UnsupportedDiagnostic{}, KindUnsupported},

		// Anything outside the taxonomy classifies as the catch-all kind
		// rather than failing.
		{"unknown flavor", unknownDiagnostic{}, KindOther},
	}

	for _, test := range tests {
		if got := ClassifyDiagnostic(test.d); got != test.kind {
			t.Errorf("%s: expected kind %d, got %d", test.name, test.kind, got)
		}
	}
}

func TestDiagnosticHandlerDelivery(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	var received []Diagnostic
	ctx.SetDiagnosticHandler(func(d Diagnostic) {
		received = append(received, d)
	})

	ctx.handleDiagnostic(LinkerDiagnostic{Level: SeverityError, Msg: "duplicate symbol"})

	if len(received) != 1 {
		t.Fatalf("expected 1 delivered diagnostic, got %d", len(received))
	}

	if received[0].Message() != "duplicate symbol" {
		t.Errorf("unexpected message: %q", received[0].Message())
	}

	// A nil handler restores default delivery, which must not panic.
	ctx.SetDiagnosticHandler(nil)
	ctx.handleDiagnostic(unknownDiagnostic{})

	if len(received) != 1 {
		t.Errorf("removed handler still received diagnostics")
	}
}

func TestSrcMgrRangesLineRelative(t *testing.T) {
	buffer := []byte("top:\n  mov eax, ebx\n  bad instr here\n")

	// The error is inside the third line.
	line3 := strings.Index(string(buffer), "bad")
	d := SrcMgrDiagnostic{
		Level:      SeverityError,
		Msg:        "unknown instruction",
		Buffer:     buffer,
		ByteOffset: line3,
		Spans: [][2]int{
			{line3, line3 + 3},
			{line3 + 4, line3 + 9},
			{line3 + 10, line3 + 14},
		},
	}

	lineStart := strings.LastIndex(string(buffer[:line3]), "\n") + 1

	ranges := d.Ranges(2)
	if len(ranges) != 2 {
		t.Fatalf("expected the range count capped at 2, got %d", len(ranges))
	}

	want := [2]int{line3 - lineStart, line3 + 3 - lineStart}
	if ranges[0] != want {
		t.Errorf("expected line-relative range %v, got %v", want, ranges[0])
	}

	if all := d.Ranges(10); len(all) != 3 {
		t.Errorf("expected all 3 ranges, got %d", len(all))
	}
}

func TestSrcMgrRangesFirstLine(t *testing.T) {
	d := SrcMgrDiagnostic{
		Buffer:     []byte("bad"),
		ByteOffset: 0,
		Spans:      [][2]int{{0, 3}},
	}

	ranges := d.Ranges(4)
	if len(ranges) != 1 || ranges[0] != [2]int{0, 3} {
		t.Errorf("unexpected ranges for first-line error: %v", ranges)
	}
}
