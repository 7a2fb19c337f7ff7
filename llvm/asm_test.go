package llvm

import "testing"

func TestVerifyInlineAsm(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	i32 := ctx.IntType(32)
	void := ctx.VoidType()

	tests := []struct {
		name        string
		ftype       FunctionType
		constraints string
		valid       bool
	}{
		{"void no operands", ctx.FunctionTypeOf(void), "", true},
		{"void with clobber", ctx.FunctionTypeOf(void), "~{memory}", true},
		{"one input", ctx.FunctionTypeOf(void, i32), "r", true},
		{"two inputs", ctx.FunctionTypeOf(void, i32, i32), "r,r", true},
		{"one output", ctx.FunctionTypeOf(i32), "=r", true},
		{"output and input", ctx.FunctionTypeOf(i32, i32), "=r,r", true},
		{"two outputs into struct", ctx.FunctionTypeOf(ctx.StructOf(i32, i32)), "=r,=r", true},
		{"full mix", ctx.FunctionTypeOf(i32, i32, i32), "=r,r,r,~{cc},~{memory}", true},

		{"input count mismatch", ctx.FunctionTypeOf(void, i32), "r,r", false},
		{"missing input", ctx.FunctionTypeOf(void, i32), "", false},
		{"output for void return", ctx.FunctionTypeOf(void), "=r", false},
		{"no output for int return", ctx.FunctionTypeOf(i32), "r", false},
		{"output count mismatch", ctx.FunctionTypeOf(ctx.StructOf(i32, i32)), "=r", false},
		{"output after input", ctx.FunctionTypeOf(i32, i32), "r,=r", false},
		{"empty constraint entry", ctx.FunctionTypeOf(void, i32), "r,", false},
		{"malformed clobber", ctx.FunctionTypeOf(void), "~cc", false},
	}

	for _, test := range tests {
		if got := VerifyInlineAsm(test.ftype, test.constraints); got != test.valid {
			t.Errorf("%s: expected valid=%v, got %v", test.name, test.valid, got)
		}
	}
}

func TestNewInlineAsmFlags(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	ftype := ctx.FunctionTypeOf(ctx.VoidType())
	ia := NewInlineAsm(ftype, "nop", "", true, true, IntelDialect)

	if !ia.HasSideEffects() {
		t.Errorf("side effects flag not carried")
	}

	if !ia.IsAlignStack() {
		t.Errorf("align stack flag not carried")
	}

	plain := NewInlineAsm(ftype, "nop", "", false, false, ATTDialect)
	if plain.HasSideEffects() || plain.IsAlignStack() {
		t.Errorf("flags set without being requested")
	}
}
