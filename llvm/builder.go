package llvm

import (
	"ember/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
)

// IRBuilder is used to construct backend instructions.  It always appends to
// the end of its current block.
type IRBuilder struct {
	ctx *Context

	// The block the builder is currently positioned in.
	block *ir.Block
}

// NewBuilder creates a new IR builder in the context.  The builder is not
// positioned in any block until MoveToEnd is called.
func (c *Context) NewBuilder() *IRBuilder {
	return &IRBuilder{ctx: c}
}

// MoveToEnd positions the builder at the end of the given block.
func (irb *IRBuilder) MoveToEnd(bb BasicBlock) {
	irb.block = bb.b
}

// Block returns the block the builder is currently positioned in.
func (irb *IRBuilder) Block() (bb BasicBlock) {
	if irb.block == nil {
		report.ICE("IR builder is not positioned in a block")
	}

	bb.b = irb.block
	return
}

// -----------------------------------------------------------------------------

// BuildRet builds a `ret` terminator returning x.
func (irb *IRBuilder) BuildRet(x Value) {
	irb.block.NewRet(x.ll())
}

// BuildRetVoid builds a `ret void` terminator.
func (irb *IRBuilder) BuildRetVoid() {
	irb.block.NewRet(nil)
}

// BuildBr builds an unconditional `br` terminator to target.
func (irb *IRBuilder) BuildBr(target BasicBlock) {
	irb.block.NewBr(target.b)
}

// BuildCondBr builds a conditional `br` terminator.
func (irb *IRBuilder) BuildCondBr(cond Value, thenBlock, elseBlock BasicBlock) {
	irb.block.NewCondBr(cond.ll(), thenBlock.b, elseBlock.b)
}

// BuildUnreachable builds an `unreachable` terminator.
func (irb *IRBuilder) BuildUnreachable() {
	irb.block.NewUnreachable()
}

// BuildAlloca builds an `alloca` instruction allocating a stack slot of the
// given element type.
func (irb *IRBuilder) BuildAlloca(elemType Type) Value {
	return wrapValue(irb.block.NewAlloca(elemType.ll()))
}

// BuildLoad builds a non-atomic `load` instruction.
func (irb *IRBuilder) BuildLoad(elemType Type, ptr Value) Value {
	return wrapValue(irb.block.NewLoad(elemType.ll(), ptr.ll()))
}

// BuildStore builds a non-atomic `store` instruction.
func (irb *IRBuilder) BuildStore(x, ptr Value) {
	irb.block.NewStore(x.ll(), ptr.ll())
}

// -----------------------------------------------------------------------------

// AtomicLoadInstr is a handle to an atomic `load` instruction.
type AtomicLoadInstr struct {
	valueBase

	i *ir.InstLoad
}

// Ordering returns the atomic ordering of the load.
func (al AtomicLoadInstr) Ordering() AtomicOrdering {
	return atomicOrderingFromBackend(al.i.Ordering)
}

// Alignment returns the alignment of the load in bytes.
func (al AtomicLoadInstr) Alignment() uint64 {
	return uint64(al.i.Align)
}

// BuildAtomicLoad builds an atomic `load` instruction.  The ordering must not
// be release-flavored; the alignment is required, not inferred.
func (irb *IRBuilder) BuildAtomicLoad(elemType Type, ptr Value, ordering AtomicOrdering, align uint64) (al AtomicLoadInstr) {
	switch ordering {
	case OrderingRelease, OrderingAcquireRelease:
		report.ICE("atomic load cannot have %s ordering", ordering.String())
	}

	al.i = irb.block.NewLoad(elemType.ll(), ptr.ll())
	al.i.Atomic = true
	al.i.Ordering = ordering.toBackend()
	al.i.Align = ir.Align(align)
	al.v = al.i
	return
}

// AtomicStoreInstr is a handle to an atomic `store` instruction.
type AtomicStoreInstr struct {
	i *ir.InstStore
}

// Ordering returns the atomic ordering of the store.
func (as AtomicStoreInstr) Ordering() AtomicOrdering {
	return atomicOrderingFromBackend(as.i.Ordering)
}

// Alignment returns the alignment of the store in bytes.
func (as AtomicStoreInstr) Alignment() uint64 {
	return uint64(as.i.Align)
}

// BuildAtomicStore builds an atomic `store` instruction.  The ordering must
// not be acquire-flavored.
func (irb *IRBuilder) BuildAtomicStore(x, ptr Value, ordering AtomicOrdering, align uint64) (as AtomicStoreInstr) {
	switch ordering {
	case OrderingAcquire, OrderingAcquireRelease:
		report.ICE("atomic store cannot have %s ordering", ordering.String())
	}

	as.i = irb.block.NewStore(x.ll(), ptr.ll())
	as.i.Atomic = true
	as.i.Ordering = ordering.toBackend()
	as.i.Align = ir.Align(align)
	return
}

// AtomicRMWInstr is a handle to an `atomicrmw` instruction.
type AtomicRMWInstr struct {
	valueBase

	i *ir.InstAtomicRMW
}

// Ordering returns the atomic ordering of the operation.
func (ar AtomicRMWInstr) Ordering() AtomicOrdering {
	return atomicOrderingFromBackend(ar.i.Ordering)
}

// BuildAtomicRMW builds an `atomicrmw` instruction applying op to the value
// stored at ptr.
func (irb *IRBuilder) BuildAtomicRMW(op AtomicRMWOp, ptr, x Value, ordering AtomicOrdering) (ar AtomicRMWInstr) {
	ar.i = irb.block.NewAtomicRMW(op.toBackend(), ptr.ll(), x.ll(), ordering.toBackend())
	ar.v = ar.i
	return
}

// CmpXchgInstr is a handle to a `cmpxchg` instruction.  The instruction
// yields an aggregate of the loaded value and a success flag.
type CmpXchgInstr struct {
	valueBase

	i *ir.InstCmpXchg
}

// SuccessOrdering returns the atomic ordering applied on success.
func (cx CmpXchgInstr) SuccessOrdering() AtomicOrdering {
	return atomicOrderingFromBackend(cx.i.SuccessOrdering)
}

// FailureOrdering returns the atomic ordering applied on failure.
func (cx CmpXchgInstr) FailureOrdering() AtomicOrdering {
	return atomicOrderingFromBackend(cx.i.FailureOrdering)
}

// Weak returns whether the exchange is permitted to fail spuriously.
func (cx CmpXchgInstr) Weak() bool {
	return cx.i.Weak
}

// BuildAtomicCmpXchg builds a `cmpxchg` instruction.  The weak flag is
// explicit and carried verbatim onto the instruction.
func (irb *IRBuilder) BuildAtomicCmpXchg(ptr, cmp, newValue Value, successOrdering, failureOrdering AtomicOrdering, weak bool) (cx CmpXchgInstr) {
	switch failureOrdering {
	case OrderingRelease, OrderingAcquireRelease:
		report.ICE("cmpxchg failure ordering cannot be %s", failureOrdering.String())
	}

	cx.i = irb.block.NewCmpXchg(ptr.ll(), cmp.ll(), newValue.ll(), successOrdering.toBackend(), failureOrdering.toBackend())
	cx.i.Weak = weak
	cx.v = cx.i
	return
}

// FenceInstr is a handle to a `fence` instruction.
type FenceInstr struct {
	i *ir.InstFence
}

// Ordering returns the atomic ordering of the fence.
func (f FenceInstr) Ordering() AtomicOrdering {
	return atomicOrderingFromBackend(f.i.Ordering)
}

// Scope returns the synchronization scope of the fence.
func (f FenceInstr) Scope() SyncScope {
	return syncScopeFromBackend(f.i.SyncScope)
}

// BuildFence builds a `fence` instruction with the given ordering and
// synchronization scope.
func (irb *IRBuilder) BuildFence(ordering AtomicOrdering, scope SyncScope) (f FenceInstr) {
	switch ordering {
	case OrderingNotAtomic, OrderingUnordered, OrderingMonotonic:
		report.ICE("fence requires at least acquire ordering")
	}

	f.i = irb.block.NewFence(ordering.toBackend())
	f.i.SyncScope = scope.toBackend()
	return
}

// -----------------------------------------------------------------------------

// FuncletPad is a handle to a funclet pad instruction: either a `catchpad`
// or a `cleanuppad`.
type FuncletPad struct {
	valueBase
}

// padOperand converts an optional funclet pad into the backend parent-pad
// operand, substituting the none token when no pad is given: some backend
// versions reject a literal null parent.
func padOperand(pad *FuncletPad) ir.ExceptionPad {
	if pad == nil {
		return constant.None
	}

	return pad.v.(ir.ExceptionPad)
}

// CatchSwitchTerm is a handle to a `catchswitch` terminator.
type CatchSwitchTerm struct {
	valueBase

	t *ir.TermCatchSwitch
}

// NumHandlers returns the number of handler blocks of the catch switch.
func (cs CatchSwitchTerm) NumHandlers() int {
	return len(cs.t.Handlers)
}

// AddHandler appends a handler block to the catch switch.
func (cs CatchSwitchTerm) AddHandler(bb BasicBlock) {
	cs.t.Handlers = append(cs.t.Handlers, bb.b)
}

// BuildCatchSwitch builds a `catchswitch` terminator.  A nil parent means the
// switch unwinds out of the enclosing function scope; a nil unwind block
// means unhandled exceptions propagate to the caller.  Handler blocks are
// attached afterwards with AddHandler.
func (irb *IRBuilder) BuildCatchSwitch(parent *FuncletPad, unwind *BasicBlock) (cs CatchSwitchTerm) {
	// A nil target makes the backend unwind to the caller.
	var target *ir.Block
	if unwind != nil {
		target = unwind.b
	}

	cs.t = irb.block.NewCatchSwitch(padOperand(parent), nil, target)
	cs.v = cs.t
	return
}

// BuildCatchPad builds a `catchpad` instruction inside the given catch
// switch.
func (irb *IRBuilder) BuildCatchPad(catchSwitch CatchSwitchTerm, args ...Value) (pad FuncletPad) {
	llArgs := make([]value.Value, len(args))
	for i, arg := range args {
		llArgs[i] = arg.ll()
	}

	pad.v = irb.block.NewCatchPad(catchSwitch.t, llArgs...)
	return
}

// BuildCleanupPad builds a `cleanuppad` instruction.  A nil parent means the
// pad is rooted at the enclosing function scope: the none token is
// substituted as its parent operand.
func (irb *IRBuilder) BuildCleanupPad(parent *FuncletPad, args ...Value) (pad FuncletPad) {
	llArgs := make([]value.Value, len(args))
	for i, arg := range args {
		llArgs[i] = arg.ll()
	}

	pad.v = irb.block.NewCleanupPad(padOperand(parent), llArgs...)
	return
}

// BuildCatchRet builds a `catchret` terminator leaving the given catch pad
// and continuing at target.
func (irb *IRBuilder) BuildCatchRet(pad FuncletPad, target BasicBlock) {
	irb.block.NewCatchRet(pad.v.(*ir.InstCatchPad), target.b)
}

// BuildCleanupRet builds a `cleanupret` terminator leaving the given cleanup
// pad.  A nil unwind block unwinds to the caller.
func (irb *IRBuilder) BuildCleanupRet(pad FuncletPad, unwind *BasicBlock) {
	var target *ir.Block
	if unwind != nil {
		target = unwind.b
	}

	irb.block.NewCleanupRet(pad.v.(*ir.InstCleanupPad), target)
}

// -----------------------------------------------------------------------------

// OperandBundle is a tagged group of auxiliary operands attached to a call
// site.
type OperandBundle struct {
	Tag    string
	Inputs []Value
}

func (ob *OperandBundle) toBackend() *ir.OperandBundle {
	inputs := make([]value.Value, len(ob.Inputs))
	for i, input := range ob.Inputs {
		inputs[i] = input.ll()
	}

	return ir.NewOperandBundle(ob.Tag, inputs...)
}

// CallInstr is a handle to a `call` instruction.
type CallInstr struct {
	valueBase

	i *ir.InstCall
}

// NumOperandBundles returns the number of operand bundles attached to the
// call.
func (ci CallInstr) NumOperandBundles() int {
	return len(ci.i.OperandBundles)
}

// SetCallConv overrides the calling convention of the call site.
func (ci CallInstr) SetCallConv(cc CallConv) {
	ci.i.CallingConv = cc.toBackend()
}

// BuildCall builds a `call` instruction.  At most one operand bundle may be
// attached; pass nil for none.
func (irb *IRBuilder) BuildCall(callee Value, args []Value, bundle *OperandBundle) (ci CallInstr) {
	llArgs := make([]value.Value, len(args))
	for i, arg := range args {
		llArgs[i] = arg.ll()
	}

	ci.i = irb.block.NewCall(callee.ll(), llArgs...)
	if bundle != nil {
		ci.i.OperandBundles = []*ir.OperandBundle{bundle.toBackend()}
	}

	ci.v = ci.i
	return
}

// InvokeTerm is a handle to an `invoke` terminator.
type InvokeTerm struct {
	valueBase

	t *ir.TermInvoke
}

// NumOperandBundles returns the number of operand bundles attached to the
// invoke.
func (iv InvokeTerm) NumOperandBundles() int {
	return len(iv.t.OperandBundles)
}

// SetCallConv overrides the calling convention of the invoke site.
func (iv InvokeTerm) SetCallConv(cc CallConv) {
	iv.t.CallingConv = cc.toBackend()
}

// BuildInvoke builds an `invoke` terminator transferring control to
// normalBlock on return and unwindBlock on unwind.  At most one operand
// bundle may be attached; pass nil for none.
func (irb *IRBuilder) BuildInvoke(callee Value, args []Value, normalBlock, unwindBlock BasicBlock, bundle *OperandBundle) (iv InvokeTerm) {
	llArgs := make([]value.Value, len(args))
	for i, arg := range args {
		llArgs[i] = arg.ll()
	}

	iv.t = irb.block.NewInvoke(callee.ll(), llArgs, normalBlock.b, unwindBlock.b)
	if bundle != nil {
		iv.t.OperandBundles = []*ir.OperandBundle{bundle.toBackend()}
	}

	iv.v = iv.t
	return
}
