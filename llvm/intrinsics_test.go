package llvm

import (
	"testing"

	"github.com/llir/llvm/ir"
)

// testFuncFor is testFunc against a specific backend version.
func testFuncFor(t *testing.T, backendVersion string) (*Context, *IRBuilder) {
	t.Helper()

	ctx := NewContext(backendVersion)
	t.Cleanup(ctx.Dispose)

	m := ctx.NewModule("test.ch")
	fn := m.AddFunction("test", ctx.FunctionTypeOf(ctx.VoidType()))
	bb := fn.AppendBlock("entry")

	irb := ctx.NewBuilder()
	irb.MoveToEnd(bb)
	return ctx, irb
}

// asCall unwraps a built intrinsic call for shape inspection.
func asCall(t *testing.T, v Value) *ir.InstCall {
	t.Helper()

	call, ok := v.ll().(*ir.InstCall)
	if !ok {
		t.Fatalf("expected a call instruction, got %T", v.ll())
	}

	return call
}

func TestMemCpyCallShapeByVersion(t *testing.T) {
	tests := []struct {
		version string
		numArgs int
	}{
		// Older backends take the alignment as a trailing argument.
		{"6.0.0", 5},
		{"14.0.0", 4},
	}

	for _, test := range tests {
		ctx, irb := testFuncFor(t, test.version)

		i8ptr := ctx.PointerTo(ctx.IntType(8))
		dst := irb.BuildAlloca(i8ptr)
		src := irb.BuildAlloca(i8ptr)
		size := ConstInt(ctx.IntType(64), 16, false)

		call := asCall(t, irb.BuildMemCpy(dst, 8, src, 4, size, false))
		if len(call.Args) != test.numArgs {
			t.Errorf("version %s: expected %d call arguments, got %d",
				test.version, test.numArgs, len(call.Args))
		}
	}
}

func TestMemCpyAlignmentsIndependentPerCall(t *testing.T) {
	ctx, irb := testFuncFor(t, "14.0.0")

	i8ptr := ctx.PointerTo(ctx.IntType(8))
	dst := irb.BuildAlloca(i8ptr)
	src := irb.BuildAlloca(i8ptr)
	size := ConstInt(ctx.IntType(64), 16, false)

	first := asCall(t, irb.BuildMemCpy(dst, 8, src, 8, size, false))
	second := asCall(t, irb.BuildMemCpy(dst, 1, src, 2, size, false))

	if first.Callee != second.Callee {
		t.Fatal("expected both calls to share one declaration")
	}

	align := func(call *ir.InstCall, i int) ir.Align {
		t.Helper()

		arg, ok := call.Args[i].(*ir.Arg)
		if !ok || len(arg.Attrs) != 1 {
			t.Fatalf("expected argument %d to carry one attribute, got %v", i, call.Args[i])
		}

		a, ok := arg.Attrs[0].(ir.Align)
		if !ok {
			t.Fatalf("expected an alignment attribute on argument %d, got %v", i, arg.Attrs[0])
		}
		return a
	}

	if got := align(first, 0); got != 8 {
		t.Errorf("first call destination alignment clobbered: got %d", got)
	}
	if got := align(first, 1); got != 8 {
		t.Errorf("first call source alignment clobbered: got %d", got)
	}
	if got := align(second, 0); got != 1 {
		t.Errorf("second call destination alignment: got %d", got)
	}
	if got := align(second, 1); got != 2 {
		t.Errorf("second call source alignment: got %d", got)
	}
}

func TestMemSetCallShapeByVersion(t *testing.T) {
	tests := []struct {
		version string
		numArgs int
	}{
		{"6.0.0", 5},
		{"14.0.0", 4},
	}

	for _, test := range tests {
		ctx, irb := testFuncFor(t, test.version)

		dst := irb.BuildAlloca(ctx.IntType(8))
		fill := ConstInt(ctx.IntType(8), 0, false)
		size := ConstInt(ctx.IntType(64), 32, false)

		call := asCall(t, irb.BuildMemSet(dst, fill, size, 1, false))
		if len(call.Args) != test.numArgs {
			t.Errorf("version %s: expected %d call arguments, got %d",
				test.version, test.numArgs, len(call.Args))
		}
	}
}

func TestReductionNamespaceByVersion(t *testing.T) {
	tests := []struct {
		version string
		name    string
	}{
		{"11.0.0", "llvm.experimental.vector.reduce.add.v4i32"},
		{"14.0.0", "llvm.vector.reduce.add.v4i32"},
	}

	for _, test := range tests {
		ctx, irb := testFuncFor(t, test.version)

		vec := irb.BuildAlloca(ctx.VectorOf(4, ctx.IntType(32)))
		loaded := irb.BuildLoad(ctx.VectorOf(4, ctx.IntType(32)), vec)

		call := asCall(t, irb.BuildVectorReduceAdd(loaded))
		callee, ok := call.Callee.(*ir.Func)
		if !ok {
			t.Fatalf("version %s: callee is not a function", test.version)
		}

		if callee.Name() != test.name {
			t.Errorf("version %s: expected intrinsic %q, got %q",
				test.version, test.name, callee.Name())
		}
	}
}

func TestFloatReductionSeededFold(t *testing.T) {
	ctx, irb := testFuncFor(t, "14.0.0")

	f64vec := ctx.VectorOf(2, ctx.DoubleType())
	vec := irb.BuildLoad(f64vec, irb.BuildAlloca(f64vec))
	acc := ConstReal(ctx.DoubleType(), 0)

	call := asCall(t, irb.BuildVectorReduceFAdd(acc, vec))
	if len(call.Args) != 2 {
		t.Fatalf("expected accumulator and vector arguments, got %d", len(call.Args))
	}
}

func TestFloatMinMaxReduceNoNaNFlag(t *testing.T) {
	ctx, irb := testFuncFor(t, "14.0.0")

	f32vec := ctx.VectorOf(4, ctx.FloatType())
	vec := irb.BuildLoad(f32vec, irb.BuildAlloca(f32vec))

	flagged := asCall(t, irb.BuildVectorReduceFMin(vec, true))
	if len(flagged.FastMathFlags) == 0 {
		t.Errorf("expected the nnan fast-math flag to be set")
	}

	plain := asCall(t, irb.BuildVectorReduceFMax(vec, false))
	if len(plain.FastMathFlags) != 0 {
		t.Errorf("expected no fast-math flags")
	}
}

func TestIntrinsicDeclaredOnce(t *testing.T) {
	ctx, irb := testFuncFor(t, "14.0.0")

	i32vec := ctx.VectorOf(4, ctx.IntType(32))
	vec := irb.BuildLoad(i32vec, irb.BuildAlloca(i32vec))

	first := asCall(t, irb.BuildVectorReduceXor(vec))
	second := asCall(t, irb.BuildVectorReduceXor(vec))

	if first.Callee != second.Callee {
		t.Errorf("repeated use redeclared the intrinsic")
	}
}

func TestBuildIntCast(t *testing.T) {
	ctx, irb := testFuncFor(t, "14.0.0")

	i32 := ctx.IntType(32)
	i64 := ctx.IntType(64)
	x := irb.BuildLoad(i32, irb.BuildAlloca(i32))

	// Equal widths are a no-op.
	if irb.BuildIntCast(x, i32, true) != x {
		t.Errorf("same-width cast should return the operand unchanged")
	}

	widened := irb.BuildIntCast(x, i64, true)
	if _, ok := widened.ll().(*ir.InstSExt); !ok {
		t.Errorf("expected signed widening to sign-extend, got %T", widened.ll())
	}

	widenedU := irb.BuildIntCast(x, i64, false)
	if _, ok := widenedU.ll().(*ir.InstZExt); !ok {
		t.Errorf("expected unsigned widening to zero-extend, got %T", widenedU.ll())
	}

	narrowed := irb.BuildIntCast(x, ctx.IntType(8), true)
	if _, ok := narrowed.ll().(*ir.InstTrunc); !ok {
		t.Errorf("expected narrowing to truncate, got %T", narrowed.ll())
	}
}

func TestIntMinMaxSignedness(t *testing.T) {
	ctx, irb := testFuncFor(t, "14.0.0")

	i32 := ctx.IntType(32)
	a := irb.BuildLoad(i32, irb.BuildAlloca(i32))
	b := irb.BuildLoad(i32, irb.BuildAlloca(i32))

	signed := asCall(t, irb.BuildIntMin(a, b, true))
	if signed.Callee.(*ir.Func).Name() != "llvm.smin.i32" {
		t.Errorf("expected llvm.smin.i32, got %s", signed.Callee.(*ir.Func).Name())
	}

	unsigned := asCall(t, irb.BuildIntMax(a, b, false))
	if unsigned.Callee.(*ir.Func).Name() != "llvm.umax.i32" {
		t.Errorf("expected llvm.umax.i32, got %s", unsigned.Callee.(*ir.Func).Name())
	}
}
