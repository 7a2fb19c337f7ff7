package llvm

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// AsmDialect represents an inline assembly syntax dialect.
type AsmDialect uint32

// Enumeration of inline assembly dialects.  The values are frozen: they are
// carried verbatim across the bridge.
const (
	ATTDialect   AsmDialect = 0
	IntelDialect AsmDialect = 1
)

// InlineAsmValue is a handle to an inline assembly callee value.
type InlineAsmValue struct {
	valueBase

	a *ir.InlineAsm
}

// HasSideEffects returns whether the assembly is marked as having side
// effects.
func (ia InlineAsmValue) HasSideEffects() bool {
	return ia.a.SideEffect
}

// IsAlignStack returns whether the assembly requires stack alignment.
func (ia InlineAsmValue) IsAlignStack() bool {
	return ia.a.AlignStack
}

// NewInlineAsm creates an inline assembly value of the given function type.
// The value is used as a call target; it is not itself an instruction.
func NewInlineAsm(ftype FunctionType, asmString, constraints string, sideEffects, alignStack bool, dialect AsmDialect) (ia InlineAsmValue) {
	ia.a = ir.NewInlineAsm(ftype.t, asmString, constraints)
	ia.a.SideEffect = sideEffects
	ia.a.AlignStack = alignStack
	ia.a.IntelDialect = dialect == IntelDialect
	ia.v = ia.a
	return
}

// VerifyInlineAsm checks a constraint list against the function type of the
// assembly without constructing anything.  It reports only validity; invalid
// constraints are a caller error to surface, not a crash.
func VerifyInlineAsm(ftype FunctionType, constraints string) bool {
	var outputs, inputs int

	if constraints != "" {
		for _, c := range strings.Split(constraints, ",") {
			c = strings.TrimSpace(c)

			switch {
			case c == "":
				return false
			case strings.HasPrefix(c, "="):
				// Outputs must precede all inputs and clobbers.
				if inputs > 0 {
					return false
				}

				outputs++
			case strings.HasPrefix(c, "~{"):
				if !strings.HasSuffix(c, "}") {
					return false
				}
			case strings.HasPrefix(c, "~"):
				return false
			default:
				inputs++
			}
		}
	}

	sig := ftype.t.(*types.FuncType)
	if inputs != len(sig.Params) {
		return false
	}

	// The output count must match the shape of the return type: none for
	// void, one for a scalar, and one struct field each otherwise.
	switch outputs {
	case 0:
		return sig.RetType.Equal(types.Void)
	case 1:
		return !sig.RetType.Equal(types.Void)
	default:
		st, ok := sig.RetType.(*types.StructType)
		return ok && len(st.Fields) == outputs
	}
}
