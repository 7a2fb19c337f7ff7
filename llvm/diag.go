package llvm

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"
)

// DiagnosticSeverity represents the severity level of a backend diagnostic.
type DiagnosticSeverity uint32

// Enumeration of diagnostic severities.  The values are frozen.
const (
	SeverityError   DiagnosticSeverity = 0
	SeverityWarning DiagnosticSeverity = 1
	SeverityRemark  DiagnosticSeverity = 2
	SeverityNote    DiagnosticSeverity = 3
)

// DiagnosticKind classifies a backend diagnostic into the closed taxonomy
// the bridge understands.  Anything it does not recognize maps to KindOther.
type DiagnosticKind uint32

// Enumeration of diagnostic kinds.
const (
	KindOther DiagnosticKind = iota
	KindInlineAsm
	KindStackSize
	KindDebugMetadataVersion
	KindSampleProfile
	KindOptimizationRemark
	KindOptimizationRemarkMissed
	KindOptimizationRemarkOther
	KindPGOProfile
	KindLinker
	KindSrcMgr
	KindUnsupported
)

// Diagnostic is a structured diagnostic delivered by the backend.  A
// diagnostic is only valid for the duration of the handler callback that
// received it: handlers must copy out anything they keep.
type Diagnostic interface {
	// Severity returns the severity level of the diagnostic.
	Severity() DiagnosticSeverity

	// Message returns the free-text message of the diagnostic.
	Message() string
}

// ClassifyDiagnostic maps a diagnostic onto the closed kind taxonomy.  It
// never fails: diagnostics outside the taxonomy classify as KindOther.
func ClassifyDiagnostic(d Diagnostic) DiagnosticKind {
	switch v := d.(type) {
	case OptimizationDiagnostic:
		// Only the passed and missed remark kinds are distinguished; every
		// other remark flavor collapses into the generic remark kind.
		switch v.RemarkKind {
		case RemarkPassed:
			return KindOptimizationRemark
		case RemarkMissed:
			return KindOptimizationRemarkMissed
		default:
			return KindOptimizationRemarkOther
		}
	case InlineAsmDiagnostic:
		return KindInlineAsm
	case StackSizeDiagnostic:
		return KindStackSize
	case DebugMetadataVersionDiagnostic:
		return KindDebugMetadataVersion
	case SampleProfileDiagnostic:
		return KindSampleProfile
	case PGOProfileDiagnostic:
		return KindPGOProfile
	case LinkerDiagnostic:
		return KindLinker
	case SrcMgrDiagnostic:
		return KindSrcMgr
	case UnsupportedDiagnostic:
		return KindUnsupported
	default:
		return KindOther
	}
}

// -----------------------------------------------------------------------------

// RemarkKind distinguishes the flavors of optimization remark.
type RemarkKind uint32

// Enumeration of remark kinds.
const (
	RemarkPassed RemarkKind = iota
	RemarkMissed
	RemarkOther
)

// SourceLoc is a resolved source location attached to a diagnostic.  The
// path is absolute.
type SourceLoc struct {
	Filepath string
	Line     uint32
	Column   uint32
}

// OptimizationDiagnostic is a remark emitted by an optimization pass.
type OptimizationDiagnostic struct {
	RemarkKind RemarkKind

	// The name of the pass that produced the remark.
	PassName string

	// The function the remark applies to.
	Fn Function

	// The source location of the remark, if one resolved.
	Loc *SourceLoc

	Msg string
}

func (d OptimizationDiagnostic) Severity() DiagnosticSeverity {
	return SeverityRemark
}

func (d OptimizationDiagnostic) Message() string {
	return d.Msg
}

// InlineAsmDiagnostic is an error or warning produced while lowering an
// inline assembly block.
type InlineAsmDiagnostic struct {
	Level DiagnosticSeverity

	// Cookie correlates the diagnostic back to the originating assembly
	// block; zero when the backend attached none.
	Cookie uint64

	// The offending instruction, if the backend identified one.
	Instr Value

	Msg string
}

func (d InlineAsmDiagnostic) Severity() DiagnosticSeverity {
	return d.Level
}

func (d InlineAsmDiagnostic) Message() string {
	return d.Msg
}

// StackSizeDiagnostic reports the final stack frame size of a function.
type StackSizeDiagnostic struct {
	Fn        Function
	FrameSize uint64
}

func (d StackSizeDiagnostic) Severity() DiagnosticSeverity {
	return SeverityNote
}

func (d StackSizeDiagnostic) Message() string {
	return fmt.Sprintf("stack frame size of %d bytes in function `%s`", d.FrameSize, d.Fn.Name())
}

// DebugMetadataVersionDiagnostic reports stripped debug metadata with a
// version the backend does not understand.
type DebugMetadataVersionDiagnostic struct {
	Version uint32
	Msg     string
}

func (d DebugMetadataVersionDiagnostic) Severity() DiagnosticSeverity {
	return SeverityWarning
}

func (d DebugMetadataVersionDiagnostic) Message() string {
	return d.Msg
}

// SampleProfileDiagnostic reports a problem applying a sampling profile.
type SampleProfileDiagnostic struct {
	Msg string
}

func (d SampleProfileDiagnostic) Severity() DiagnosticSeverity {
	return SeverityWarning
}

func (d SampleProfileDiagnostic) Message() string {
	return d.Msg
}

// PGOProfileDiagnostic reports a problem applying an instrumentation
// profile.
type PGOProfileDiagnostic struct {
	Msg string
}

func (d PGOProfileDiagnostic) Severity() DiagnosticSeverity {
	return SeverityWarning
}

func (d PGOProfileDiagnostic) Message() string {
	return d.Msg
}

// LinkerDiagnostic is an error or warning produced while linking modules.
type LinkerDiagnostic struct {
	Level DiagnosticSeverity
	Msg   string
}

func (d LinkerDiagnostic) Severity() DiagnosticSeverity {
	return d.Level
}

func (d LinkerDiagnostic) Message() string {
	return d.Msg
}

// UnsupportedDiagnostic reports a construct the backend cannot lower.
type UnsupportedDiagnostic struct {
	Msg string
}

func (d UnsupportedDiagnostic) Severity() DiagnosticSeverity {
	return SeverityError
}

func (d UnsupportedDiagnostic) Message() string {
	return d.Msg
}

// -----------------------------------------------------------------------------

// SrcMgrDiagnostic is a parse diagnostic for standalone assembly or IR text.
// It carries the entire buffer being parsed rather than a file name: the
// buffer may be synthetic and have no on-disk counterpart.
type SrcMgrDiagnostic struct {
	Level DiagnosticSeverity
	Msg   string

	// The full buffer that was being parsed.
	Buffer []byte

	// The byte offset of the error within Buffer.
	ByteOffset int

	// Half-open byte spans within Buffer marking the erroneous text.
	Spans [][2]int
}

func (d SrcMgrDiagnostic) Severity() DiagnosticSeverity {
	return d.Level
}

func (d SrcMgrDiagnostic) Message() string {
	return d.Msg
}

// Ranges returns up to maxRanges half-open column ranges marking the
// erroneous span, each relative to the start of the line containing the
// error rather than the start of the buffer.
func (d SrcMgrDiagnostic) Ranges(maxRanges int) [][2]int {
	lineStart := bytes.LastIndexByte(d.Buffer[:d.ByteOffset], '\n') + 1

	var ranges [][2]int
	for _, span := range d.Spans {
		if len(ranges) == maxRanges {
			break
		}

		ranges = append(ranges, [2]int{span[0] - lineStart, span[1] - lineStart})
	}

	return ranges
}

// -----------------------------------------------------------------------------

// DiagnosticHandler receives diagnostics from the backend.  The diagnostic
// argument must not be retained past the call.
type DiagnosticHandler func(Diagnostic)

// SetDiagnosticHandler installs the diagnostic handler for the context,
// replacing any previous handler.  A nil handler restores default delivery
// to the package logger.
func (c *Context) SetDiagnosticHandler(handler DiagnosticHandler) {
	c.diagHandler = handler
}

// handleDiagnostic delivers a diagnostic to the installed handler, or to the
// package logger when no handler is installed.
func (c *Context) handleDiagnostic(d Diagnostic) {
	if c.diagHandler != nil {
		c.diagHandler(d)
		return
	}

	logger.Info("backend diagnostic",
		zap.Uint32("kind", uint32(ClassifyDiagnostic(d))),
		zap.Uint32("severity", uint32(d.Severity())),
		zap.String("message", d.Message()),
	)
}

// logger is the package diagnostic sink.  It discards everything until the
// embedding compiler routes it somewhere with SetLogger.
var logger = zap.NewNop()

// SetLogger sets the logger that unhandled diagnostics are written to.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	logger = l
}
