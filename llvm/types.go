package llvm

import (
	"github.com/llir/llvm/ir/types"
)

// Type is an interface used to represent all backend types.
type Type interface {
	// ll returns the internal backend type node.
	ll() types.Type
}

// typeBase is the base type for all type handles.
type typeBase struct {
	t types.Type
}

func (tb typeBase) ll() types.Type {
	return tb.t
}

// -----------------------------------------------------------------------------

// VoidType returns the void type.
func (c *Context) VoidType() Type {
	return typeBase{t: types.Void}
}

// TokenType returns the token type used by exception-handling pads.
func (c *Context) TokenType() Type {
	return typeBase{t: types.Token}
}

// FloatType returns the 32-bit floating-point type.
func (c *Context) FloatType() Type {
	return typeBase{t: types.Float}
}

// DoubleType returns the 64-bit floating-point type.
func (c *Context) DoubleType() Type {
	return typeBase{t: types.Double}
}

// -----------------------------------------------------------------------------

// IntegerType represents an integer type.
type IntegerType struct {
	typeBase
}

// IntType returns the integer type of the given bit width.
func (c *Context) IntType(bits uint64) (it IntegerType) {
	switch bits {
	case 1:
		it.t = types.I1
	case 8:
		it.t = types.I8
	case 16:
		it.t = types.I16
	case 32:
		it.t = types.I32
	case 64:
		it.t = types.I64
	default:
		it.t = types.NewInt(bits)
	}

	return
}

// BitWidth returns the bit width of the integer type.
func (it IntegerType) BitWidth() uint64 {
	return it.t.(*types.IntType).BitSize
}

// -----------------------------------------------------------------------------

// PointerType represents a pointer type.
type PointerType struct {
	typeBase
}

// PointerTo returns the pointer type with the given element type.
func (c *Context) PointerTo(elem Type) (pt PointerType) {
	pt.t = types.NewPointer(elem.ll())
	return
}

// ElemType returns the element type of the pointer type.
func (pt PointerType) ElemType() Type {
	return typeBase{t: pt.t.(*types.PointerType).ElemType}
}

// -----------------------------------------------------------------------------

// VectorType represents a fixed-length vector type.
type VectorType struct {
	typeBase
}

// VectorOf returns the vector type with the given length and element type.
func (c *Context) VectorOf(length uint64, elem Type) (vt VectorType) {
	vt.t = types.NewVector(length, elem.ll())
	return
}

// Len returns the number of elements in the vector type.
func (vt VectorType) Len() uint64 {
	return vt.t.(*types.VectorType).Len
}

// ElemType returns the element type of the vector type.
func (vt VectorType) ElemType() Type {
	return typeBase{t: vt.t.(*types.VectorType).ElemType}
}

// -----------------------------------------------------------------------------

// StructType represents a structure type.
type StructType struct {
	typeBase
}

// StructOf returns the literal structure type with the given field types.
func (c *Context) StructOf(fields ...Type) (st StructType) {
	fieldTypes := make([]types.Type, len(fields))
	for i, field := range fields {
		fieldTypes[i] = field.ll()
	}

	st.t = types.NewStruct(fieldTypes...)
	return
}

// NumFields returns the number of fields of the structure type.
func (st StructType) NumFields() int {
	return len(st.t.(*types.StructType).Fields)
}

// -----------------------------------------------------------------------------

// FunctionType represents a function type.
type FunctionType struct {
	typeBase
}

// FunctionTypeOf returns the function type with the given return and
// parameter types.
func (c *Context) FunctionTypeOf(returnType Type, paramTypes ...Type) (ft FunctionType) {
	params := make([]types.Type, len(paramTypes))
	for i, paramType := range paramTypes {
		params[i] = paramType.ll()
	}

	ft.t = types.NewFunc(returnType.ll(), params...)
	return
}

// ReturnType returns the return type of the function type.
func (ft FunctionType) ReturnType() Type {
	return typeBase{t: ft.t.(*types.FuncType).RetType}
}

// NumParams returns the number of parameters of the function type.
func (ft FunctionType) NumParams() int {
	return len(ft.t.(*types.FuncType).Params)
}

// ParamType returns the parameter type at index ndx.
func (ft FunctionType) ParamType(ndx int) Type {
	params := ft.t.(*types.FuncType).Params
	if 0 <= ndx && ndx < len(params) {
		return typeBase{t: params[ndx]}
	}

	panic("error: parameter type index out of bounds")
}
