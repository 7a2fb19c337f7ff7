package llvm

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
)

// testFunc creates a context, module, void function, and positioned builder
// for instruction construction tests.
func testFunc(t *testing.T) (*Context, *IRBuilder, Function) {
	t.Helper()

	ctx := NewContext("14.0.0")
	t.Cleanup(ctx.Dispose)

	m := ctx.NewModule("test.ch")
	fn := m.AddFunction("test", ctx.FunctionTypeOf(ctx.VoidType()))
	bb := fn.AppendBlock("entry")

	irb := ctx.NewBuilder()
	irb.MoveToEnd(bb)
	return ctx, irb, fn
}

func TestAtomicLoadOrderingRoundTrip(t *testing.T) {
	ctx, irb, _ := testFunc(t)

	i64 := ctx.IntType(64)
	slot := irb.BuildAlloca(i64)

	orderings := []AtomicOrdering{
		OrderingUnordered, OrderingMonotonic, OrderingAcquire,
		OrderingSequentiallyConsistent,
	}

	for _, ordering := range orderings {
		load := irb.BuildAtomicLoad(i64, slot, ordering, 8)

		if got := load.Ordering(); got != ordering {
			t.Errorf("ordering %s: read back %s", ordering, got)
		}

		if load.Alignment() != 8 {
			t.Errorf("ordering %s: alignment not preserved", ordering)
		}
	}
}

func TestAtomicStoreOrderingRoundTrip(t *testing.T) {
	ctx, irb, _ := testFunc(t)

	i32 := ctx.IntType(32)
	slot := irb.BuildAlloca(i32)
	one := ConstInt(i32, 1, false)

	store := irb.BuildAtomicStore(one, slot, OrderingRelease, 4)
	if got := store.Ordering(); got != OrderingRelease {
		t.Errorf("expected release ordering, read back %s", got)
	}
}

func TestCmpXchgWeakFlag(t *testing.T) {
	ctx, irb, _ := testFunc(t)

	i64 := ctx.IntType(64)
	slot := irb.BuildAlloca(i64)
	expected := ConstInt(i64, 10, false)
	replacement := ConstInt(i64, 20, false)

	for _, weak := range []bool{false, true} {
		cx := irb.BuildAtomicCmpXchg(slot, expected, replacement,
			OrderingSequentiallyConsistent, OrderingAcquire, weak)

		if cx.Weak() != weak {
			t.Errorf("weak=%v: flag not carried onto the instruction", weak)
		}

		if cx.SuccessOrdering() != OrderingSequentiallyConsistent {
			t.Errorf("weak=%v: success ordering not preserved", weak)
		}

		if cx.FailureOrdering() != OrderingAcquire {
			t.Errorf("weak=%v: failure ordering not preserved", weak)
		}
	}
}

func TestAtomicRMWOrderingRoundTrip(t *testing.T) {
	ctx, irb, _ := testFunc(t)

	i64 := ctx.IntType(64)
	slot := irb.BuildAlloca(i64)
	one := ConstInt(i64, 1, false)

	rmw := irb.BuildAtomicRMW(AtomicAdd, slot, one, OrderingAcquireRelease)
	if got := rmw.Ordering(); got != OrderingAcquireRelease {
		t.Errorf("expected acq_rel ordering, read back %s", got)
	}
}

func TestFenceScopeRoundTrip(t *testing.T) {
	_, irb, _ := testFunc(t)

	for _, scope := range []SyncScope{SyncScopeSingleThread, SyncScopeSystem} {
		fence := irb.BuildFence(OrderingSequentiallyConsistent, scope)

		if got := fence.Scope(); got != scope {
			t.Errorf("scope %d: read back %d", scope, got)
		}

		if fence.Ordering() != OrderingSequentiallyConsistent {
			t.Errorf("scope %d: ordering not preserved", scope)
		}
	}
}

// -----------------------------------------------------------------------------

func TestCleanupPadNilParentSubstitutesNoneToken(t *testing.T) {
	_, irb, _ := testFunc(t)

	pad := irb.BuildCleanupPad(nil)

	inst := pad.v.(*ir.InstCleanupPad)
	if inst.ParentPad != constant.None {
		t.Errorf("expected the none token as parent, got %v", inst.ParentPad)
	}
}

func TestCatchSwitchHandlers(t *testing.T) {
	_, irb, fn := testFunc(t)

	handler1 := fn.AppendBlock("handler1")
	handler2 := fn.AppendBlock("handler2")

	cs := irb.BuildCatchSwitch(nil, nil)
	cs.AddHandler(handler1)
	cs.AddHandler(handler2)

	if cs.NumHandlers() != 2 {
		t.Fatalf("expected 2 handlers, got %d", cs.NumHandlers())
	}
}

func TestUnwindToCallerHasNoTargetOperand(t *testing.T) {
	_, irb, fn := testFunc(t)

	cleanup := fn.AppendBlock("cleanup")

	cs := irb.BuildCatchSwitch(nil, nil)
	if cs.t.DefaultUnwindTarget != nil {
		t.Errorf("caller-unwinding catchswitch carries a target: %v", cs.t.DefaultUnwindTarget)
	}

	irb.MoveToEnd(cleanup)
	pad := irb.BuildCleanupPad(nil)
	irb.BuildCleanupRet(pad, nil)

	ret := cleanup.b.Term.(*ir.TermCleanupRet)
	if ret.UnwindTarget != nil {
		t.Errorf("caller-unwinding cleanupret carries a target: %v", ret.UnwindTarget)
	}
}

func TestCatchPadAndRet(t *testing.T) {
	ctx, irb, fn := testFunc(t)

	dispatch := fn.AppendBlock("dispatch")
	catchBlock := fn.AppendBlock("catch")
	cont := fn.AppendBlock("cont")
	irb.BuildBr(dispatch)

	irb.MoveToEnd(dispatch)
	cs := irb.BuildCatchSwitch(nil, nil)
	cs.AddHandler(catchBlock)

	irb.MoveToEnd(catchBlock)
	i8ptr := ctx.PointerTo(ctx.IntType(8))
	pad := irb.BuildCatchPad(cs, ConstNullptr(i8ptr))
	irb.BuildCatchRet(pad, cont)

	if !catchBlock.HasTerminator() {
		t.Errorf("catchret did not terminate the handler block")
	}
}

// -----------------------------------------------------------------------------

func TestCallOperandBundle(t *testing.T) {
	ctx, irb, _ := testFunc(t)

	callee := irb.block.Parent.Parent.NewFunc("callee", ctx.VoidType().ll())

	pad := irb.BuildCleanupPad(nil)
	call := irb.BuildCall(wrapValue(callee), nil, &OperandBundle{
		Tag:    "funclet",
		Inputs: []Value{pad},
	})

	if call.NumOperandBundles() != 1 {
		t.Fatalf("expected 1 operand bundle, got %d", call.NumOperandBundles())
	}

	bare := irb.BuildCall(wrapValue(callee), nil, nil)
	if bare.NumOperandBundles() != 0 {
		t.Fatalf("expected no operand bundles, got %d", bare.NumOperandBundles())
	}
}

func TestInvokeTargetsAndBundle(t *testing.T) {
	ctx, irb, fn := testFunc(t)

	callee := irb.block.Parent.Parent.NewFunc("callee", ctx.VoidType().ll())
	normal := fn.AppendBlock("normal")
	unwind := fn.AppendBlock("unwind")

	iv := irb.BuildInvoke(wrapValue(callee), nil, normal, unwind, &OperandBundle{Tag: "funclet"})

	if iv.NumOperandBundles() != 1 {
		t.Fatalf("expected 1 operand bundle, got %d", iv.NumOperandBundles())
	}

	if !irb.Block().HasTerminator() {
		t.Errorf("invoke did not terminate the block")
	}
}

func TestCallConvOnCallSite(t *testing.T) {
	ctx, irb, _ := testFunc(t)

	callee := irb.block.Parent.Parent.NewFunc("callee", ctx.VoidType().ll())
	call := irb.BuildCall(wrapValue(callee), nil, nil)
	call.SetCallConv(ColdCallConv)

	if got := callConvFromBackend(call.i.CallingConv); got != ColdCallConv {
		t.Errorf("expected cold calling convention, read back %d", got)
	}
}
