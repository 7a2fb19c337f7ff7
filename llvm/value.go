package llvm

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Value is an interface used to represent all backend values.  A value handle
// is a non-owning view: the backend object it stands for is owned by the
// context the value was created under.
type Value interface {
	// ll returns the internal backend value node.
	ll() value.Value

	// Type returns the type of the value.
	Type() Type

	// Name returns the name of the value, or "" if it is unnamed.
	Name() string

	// SetName sets the name of the value to name.
	SetName(name string)

	// IsConstant returns whether the value is constant.
	IsConstant() bool
}

// valueBase is the base type for all value handles.
type valueBase struct {
	v value.Value
}

func (vb valueBase) ll() value.Value {
	return vb.v
}

func (vb valueBase) Type() Type {
	return typeBase{t: vb.v.Type()}
}

func (vb valueBase) Name() string {
	if named, ok := vb.v.(value.Named); ok {
		return named.Name()
	}

	return ""
}

func (vb valueBase) SetName(name string) {
	if named, ok := vb.v.(value.Named); ok {
		named.SetName(name)
	}
}

func (vb valueBase) IsConstant() bool {
	_, ok := vb.v.(constant.Constant)
	return ok
}

// wrapValue wraps a backend value node in a value handle.
func wrapValue(v value.Value) Value {
	return valueBase{v: v}
}

// -----------------------------------------------------------------------------

// Constant represents a constant value.
type Constant struct {
	valueBase
}

// ConstInt creates a new integer constant of type intType with value n.
// Signedness is explicit: it decides how n is interpreted, never inferred
// from the value.
func ConstInt(intType IntegerType, n uint64, signed bool) (c Constant) {
	if signed {
		c.v = constant.NewInt(intType.t.(*types.IntType), int64(n))
	} else {
		ci := constant.NewInt(intType.t.(*types.IntType), 0)
		ci.X.SetUint64(n)
		c.v = ci
	}

	return
}

// ConstReal creates a new floating-point constant of type floatType with
// value n.
func ConstReal(floatType Type, n float64) (c Constant) {
	c.v = constant.NewFloat(floatType.ll().(*types.FloatType), n)
	return
}

// ConstNullptr creates a new constant null pointer of type ptrType.
func ConstNullptr(ptrType PointerType) (c Constant) {
	c.v = constant.NewNull(ptrType.t.(*types.PointerType))
	return
}

// ConstTokenNone returns the canonical none token constant.  It stands in for
// an absent parent when exception-handling pads are built without one.
func ConstTokenNone() (c Constant) {
	c.v = constant.None
	return
}

// IsNull returns whether or not the given constant is a null pointer.
func (c Constant) IsNull() bool {
	_, ok := c.v.(*constant.Null)
	return ok
}

// -----------------------------------------------------------------------------

// GlobalValue represents a global value: a function or a global variable.
type GlobalValue struct {
	valueBase
}

// globalNode is the subset of backend global behavior the bridge needs.
func (gv GlobalValue) global() *ir.Global {
	return gv.v.(*ir.Global)
}

// -----------------------------------------------------------------------------

// GlobalVariable represents a global variable.
type GlobalVariable struct {
	GlobalValue
}

// Linkage returns the linkage of the global variable.
func (gv GlobalVariable) Linkage() Linkage {
	return linkageFromBackend(gv.global().Linkage)
}

// SetLinkage sets the linkage of the global variable.
func (gv GlobalVariable) SetLinkage(l Linkage) {
	gv.global().Linkage = l.toBackend()
}

// Visibility returns the visibility style of the global variable.
func (gv GlobalVariable) Visibility() Visibility {
	return visibilityFromBackend(gv.global().Visibility)
}

// SetVisibility sets the visibility style of the global variable.
func (gv GlobalVariable) SetVisibility(v Visibility) {
	gv.global().Visibility = v.toBackend()
}

// SetUnnamedAddr sets the address significance of the global variable.
func (gv GlobalVariable) SetUnnamedAddr(ua UnnamedAddr) {
	gv.global().UnnamedAddr = ua.toBackend()
}

// SetInitializer sets the initializer of the global variable.
func (gv GlobalVariable) SetInitializer(init Constant) {
	gv.global().Init = init.v.(constant.Constant)
}

// Initializer returns the initializer of the global variable if it has one.
func (gv GlobalVariable) Initializer() (c Constant, exists bool) {
	init := gv.global().Init
	if init == nil {
		return
	}

	c.v = init
	exists = true
	return
}

// -----------------------------------------------------------------------------

// Function represents a function.
type Function struct {
	valueBase

	f *ir.Func
}

// Linkage returns the linkage of the function.
func (fn Function) Linkage() Linkage {
	return linkageFromBackend(fn.f.Linkage)
}

// SetLinkage sets the linkage of the function.
func (fn Function) SetLinkage(l Linkage) {
	fn.f.Linkage = l.toBackend()
}

// Visibility returns the visibility style of the function.
func (fn Function) Visibility() Visibility {
	return visibilityFromBackend(fn.f.Visibility)
}

// SetVisibility sets the visibility style of the function.
func (fn Function) SetVisibility(v Visibility) {
	fn.f.Visibility = v.toBackend()
}

// CallConv returns the calling convention of the function.
func (fn Function) CallConv() CallConv {
	return callConvFromBackend(fn.f.CallingConv)
}

// SetCallConv sets the calling convention of the function to cc.
func (fn Function) SetCallConv(cc CallConv) {
	fn.f.CallingConv = cc.toBackend()
}

// FuncType returns the function type of the function.
func (fn Function) FuncType() (ft FunctionType) {
	ft.t = fn.f.Sig
	return
}

// NumParams returns the number of parameters of the function.
func (fn Function) NumParams() int {
	return len(fn.f.Params)
}

// GetParam returns the function parameter at index ndx.
func (fn Function) GetParam(ndx int) Value {
	if 0 <= ndx && ndx < len(fn.f.Params) {
		return valueBase{v: fn.f.Params[ndx]}
	}

	panic("error: parameter index out of bounds")
}

// AppendBlock appends a new basic block named name to the function.
func (fn Function) AppendBlock(name string) (bb BasicBlock) {
	bb.b = fn.f.NewBlock(name)
	return
}

// blockIter is an iterator over the basic blocks of a function.
type blockIter struct {
	blocks []*ir.Block
	ndx    int
}

func (it *blockIter) Item() (bb BasicBlock) {
	bb.b = it.blocks[it.ndx]
	return
}

func (it *blockIter) Next() bool {
	it.ndx++
	return it.ndx < len(it.blocks)
}

// Blocks returns an iterator over the basic blocks of the function.
func (fn Function) Blocks() Iterator[BasicBlock] {
	return &blockIter{blocks: fn.f.Blocks, ndx: -1}
}

// -----------------------------------------------------------------------------

// BasicBlock represents a basic block.
type BasicBlock struct {
	b *ir.Block
}

// Name returns the name of the basic block.
func (bb BasicBlock) Name() string {
	return bb.b.Name()
}

// Parent returns the parent function of the basic block.
func (bb BasicBlock) Parent() (fn Function) {
	fn.v = bb.b.Parent
	fn.f = bb.b.Parent
	return
}

// NumInstructions returns the number of non-terminator instructions in the
// basic block.
func (bb BasicBlock) NumInstructions() int {
	return len(bb.b.Insts)
}

// HasTerminator returns whether the basic block has a terminator.
func (bb BasicBlock) HasTerminator() bool {
	return bb.b.Term != nil
}
