package llvm

import (
	"fmt"

	"ember/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// typeSuffix returns the name-mangling suffix of a type as used in overloaded
// intrinsic names, eg. `i64`, `f32`, or `v4i32`.
func typeSuffix(t types.Type) string {
	switch v := t.(type) {
	case *types.IntType:
		return fmt.Sprintf("i%d", v.BitSize)
	case *types.FloatType:
		switch v.Kind {
		case types.FloatKindFloat:
			return "f32"
		case types.FloatKindDouble:
			return "f64"
		}
	case *types.VectorType:
		return fmt.Sprintf("v%d%s", v.Len, typeSuffix(v.ElemType))
	case *types.PointerType:
		return "p0" + typeSuffix(v.ElemType)
	}

	report.ICE("no intrinsic name suffix for type `%s`", t)
	return ""
}

// getIntrinsic returns the declaration of the named intrinsic in the
// builder's module, declaring it on first use.
func (irb *IRBuilder) getIntrinsic(name string, retType types.Type, paramTypes ...types.Type) *ir.Func {
	m := irb.block.Parent.Parent

	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}

	params := make([]*ir.Param, len(paramTypes))
	for i, paramType := range paramTypes {
		params[i] = ir.NewParam(fmt.Sprintf("arg%d", i), paramType)
	}

	return m.NewFunc(name, retType, params...)
}

// -----------------------------------------------------------------------------

// buildMemTransfer builds a call to one of the two-pointer memory transfer
// intrinsics.  The alignments are placed where the negotiated backend
// version expects them: older backends take a single alignment as an
// explicit call argument, newer ones take per-pointer parameter attributes.
func (irb *IRBuilder) buildMemTransfer(op string, dst Value, dstAlign uint64, src Value, srcAlign uint64, size Value, volatile bool) Value {
	i8ptr := types.NewPointer(types.I8)
	sizeType := size.ll().Type()
	name := fmt.Sprintf("llvm.%s.p0i8.p0i8.%s", op, typeSuffix(sizeType))

	volArg := constant.False
	if volatile {
		volArg = constant.True
	}

	if irb.ctx.features.MemoryIntrinsicAlignArg {
		// The single-alignment form must hold for both pointers, so the
		// smaller of the two is the only sound choice.
		align := dstAlign
		if srcAlign < align {
			align = srcAlign
		}

		fn := irb.getIntrinsic(name, types.Void, i8ptr, i8ptr, sizeType, types.I32, types.I1)
		return wrapValue(irb.block.NewCall(
			fn, dst.ll(), src.ll(), size.ll(),
			constant.NewInt(types.I32, int64(align)), volArg,
		))
	}

	// The alignments are call-site attributes: the declaration is shared
	// between call sites with different alignments.
	fn := irb.getIntrinsic(name, types.Void, i8ptr, i8ptr, sizeType, types.I1)
	return wrapValue(irb.block.NewCall(fn,
		ir.NewArg(dst.ll(), ir.Align(dstAlign)),
		ir.NewArg(src.ll(), ir.Align(srcAlign)),
		size.ll(), volArg,
	))
}

// BuildMemCpy builds a call to the `memcpy` intrinsic.
func (irb *IRBuilder) BuildMemCpy(dst Value, dstAlign uint64, src Value, srcAlign uint64, size Value, volatile bool) Value {
	return irb.buildMemTransfer("memcpy", dst, dstAlign, src, srcAlign, size, volatile)
}

// BuildMemMove builds a call to the `memmove` intrinsic.
func (irb *IRBuilder) BuildMemMove(dst Value, dstAlign uint64, src Value, srcAlign uint64, size Value, volatile bool) Value {
	return irb.buildMemTransfer("memmove", dst, dstAlign, src, srcAlign, size, volatile)
}

// BuildMemSet builds a call to the `memset` intrinsic.  The fill value must
// be of type i8.
func (irb *IRBuilder) BuildMemSet(dst, fill, size Value, align uint64, volatile bool) Value {
	i8ptr := types.NewPointer(types.I8)
	sizeType := size.ll().Type()
	name := fmt.Sprintf("llvm.memset.p0i8.%s", typeSuffix(sizeType))

	volArg := constant.False
	if volatile {
		volArg = constant.True
	}

	if irb.ctx.features.MemoryIntrinsicAlignArg {
		fn := irb.getIntrinsic(name, types.Void, i8ptr, types.I8, sizeType, types.I32, types.I1)
		return wrapValue(irb.block.NewCall(
			fn, dst.ll(), fill.ll(), size.ll(),
			constant.NewInt(types.I32, int64(align)), volArg,
		))
	}

	fn := irb.getIntrinsic(name, types.Void, i8ptr, types.I8, sizeType, types.I1)
	return wrapValue(irb.block.NewCall(fn,
		ir.NewArg(dst.ll(), ir.Align(align)),
		fill.ll(), size.ll(), volArg,
	))
}

// -----------------------------------------------------------------------------

// reductionName returns the full intrinsic name for the vector reduction op
// applied to vecType, under whichever namespace the negotiated backend
// version uses.
func (irb *IRBuilder) reductionName(op string, vecType types.Type) string {
	prefix := "llvm.vector.reduce"
	if irb.ctx.features.ExperimentalReductions {
		prefix = "llvm.experimental.vector.reduce"
	}

	return fmt.Sprintf("%s.%s.%s", prefix, op, typeSuffix(vecType))
}

// buildIntReduce builds a horizontal integer reduction over a vector operand.
func (irb *IRBuilder) buildIntReduce(op string, vec Value) Value {
	vecType := vec.ll().Type().(*types.VectorType)
	fn := irb.getIntrinsic(irb.reductionName(op, vecType), vecType.ElemType, vecType)
	return wrapValue(irb.block.NewCall(fn, vec.ll()))
}

// BuildVectorReduceAdd builds an integer add reduction over vec.
func (irb *IRBuilder) BuildVectorReduceAdd(vec Value) Value {
	return irb.buildIntReduce("add", vec)
}

// BuildVectorReduceMul builds an integer multiply reduction over vec.
func (irb *IRBuilder) BuildVectorReduceMul(vec Value) Value {
	return irb.buildIntReduce("mul", vec)
}

// BuildVectorReduceAnd builds a bitwise and reduction over vec.
func (irb *IRBuilder) BuildVectorReduceAnd(vec Value) Value {
	return irb.buildIntReduce("and", vec)
}

// BuildVectorReduceOr builds a bitwise or reduction over vec.
func (irb *IRBuilder) BuildVectorReduceOr(vec Value) Value {
	return irb.buildIntReduce("or", vec)
}

// BuildVectorReduceXor builds a bitwise xor reduction over vec.
func (irb *IRBuilder) BuildVectorReduceXor(vec Value) Value {
	return irb.buildIntReduce("xor", vec)
}

// BuildVectorReduceSMin builds a signed minimum reduction over vec.
func (irb *IRBuilder) BuildVectorReduceSMin(vec Value) Value {
	return irb.buildIntReduce("smin", vec)
}

// BuildVectorReduceSMax builds a signed maximum reduction over vec.
func (irb *IRBuilder) BuildVectorReduceSMax(vec Value) Value {
	return irb.buildIntReduce("smax", vec)
}

// BuildVectorReduceUMin builds an unsigned minimum reduction over vec.
func (irb *IRBuilder) BuildVectorReduceUMin(vec Value) Value {
	return irb.buildIntReduce("umin", vec)
}

// BuildVectorReduceUMax builds an unsigned maximum reduction over vec.
func (irb *IRBuilder) BuildVectorReduceUMax(vec Value) Value {
	return irb.buildIntReduce("umax", vec)
}

// buildFloatAccReduce builds an ordered floating reduction folded into the
// accumulator acc.
func (irb *IRBuilder) buildFloatAccReduce(op string, acc, vec Value) Value {
	vecType := vec.ll().Type().(*types.VectorType)
	fn := irb.getIntrinsic(irb.reductionName(op, vecType), vecType.ElemType, vecType.ElemType, vecType)
	return wrapValue(irb.block.NewCall(fn, acc.ll(), vec.ll()))
}

// BuildVectorReduceFAdd builds a floating add reduction over vec seeded with
// the accumulator acc.
func (irb *IRBuilder) BuildVectorReduceFAdd(acc, vec Value) Value {
	return irb.buildFloatAccReduce("fadd", acc, vec)
}

// BuildVectorReduceFMul builds a floating multiply reduction over vec seeded
// with the accumulator acc.
func (irb *IRBuilder) BuildVectorReduceFMul(acc, vec Value) Value {
	return irb.buildFloatAccReduce("fmul", acc, vec)
}

// buildFloatMinMaxReduce builds a floating minimum or maximum reduction.  The
// noNaN flag asserts that the operand contains no NaN elements and is carried
// onto the call as the `nnan` fast-math flag.
func (irb *IRBuilder) buildFloatMinMaxReduce(op string, vec Value, noNaN bool) Value {
	vecType := vec.ll().Type().(*types.VectorType)
	fn := irb.getIntrinsic(irb.reductionName(op, vecType), vecType.ElemType, vecType)

	call := irb.block.NewCall(fn, vec.ll())
	if noNaN {
		call.FastMathFlags = []enum.FastMathFlag{enum.FastMathFlagNNaN}
	}

	return wrapValue(call)
}

// BuildVectorReduceFMin builds a floating minimum reduction over vec.
func (irb *IRBuilder) BuildVectorReduceFMin(vec Value, noNaN bool) Value {
	return irb.buildFloatMinMaxReduce("fmin", vec, noNaN)
}

// BuildVectorReduceFMax builds a floating maximum reduction over vec.
func (irb *IRBuilder) BuildVectorReduceFMax(vec Value, noNaN bool) Value {
	return irb.buildFloatMinMaxReduce("fmax", vec, noNaN)
}

// -----------------------------------------------------------------------------

// buildBinaryIntrinsic builds a call to a two-operand intrinsic whose result
// and operand types all match the type of a.
func (irb *IRBuilder) buildBinaryIntrinsic(op string, a, b Value) Value {
	opType := a.ll().Type()
	name := fmt.Sprintf("llvm.%s.%s", op, typeSuffix(opType))
	fn := irb.getIntrinsic(name, opType, opType, opType)
	return wrapValue(irb.block.NewCall(fn, a.ll(), b.ll()))
}

// BuildFPMin builds a call to the floating minimum intrinsic.
func (irb *IRBuilder) BuildFPMin(a, b Value) Value {
	return irb.buildBinaryIntrinsic("minnum", a, b)
}

// BuildFPMax builds a call to the floating maximum intrinsic.
func (irb *IRBuilder) BuildFPMax(a, b Value) Value {
	return irb.buildBinaryIntrinsic("maxnum", a, b)
}

// BuildIntMin builds a call to the integer minimum intrinsic.  Signedness is
// an explicit bool selecting the signed or unsigned flavor.
func (irb *IRBuilder) BuildIntMin(a, b Value, signed bool) Value {
	if signed {
		return irb.buildBinaryIntrinsic("smin", a, b)
	}

	return irb.buildBinaryIntrinsic("umin", a, b)
}

// BuildIntMax builds a call to the integer maximum intrinsic.
func (irb *IRBuilder) BuildIntMax(a, b Value, signed bool) Value {
	if signed {
		return irb.buildBinaryIntrinsic("smax", a, b)
	}

	return irb.buildBinaryIntrinsic("umax", a, b)
}

// -----------------------------------------------------------------------------

// BuildIntCast builds an integer cast of x to destType, choosing the widening
// or narrowing instruction from the relative bit widths.  Signedness is
// explicit and decides whether widening sign- or zero-extends.
func (irb *IRBuilder) BuildIntCast(x Value, destType IntegerType, signed bool) Value {
	srcType, ok := x.ll().Type().(*types.IntType)
	if !ok {
		report.ICE("integer cast applied to non-integer value")
	}

	destBits := destType.t.(*types.IntType).BitSize

	var inst value.Value
	switch {
	case srcType.BitSize == destBits:
		return x
	case srcType.BitSize > destBits:
		inst = irb.block.NewTrunc(x.ll(), destType.t)
	case signed:
		inst = irb.block.NewSExt(x.ll(), destType.t)
	default:
		inst = irb.block.NewZExt(x.ll(), destType.t)
	}

	return wrapValue(inst)
}
