package llvm

import (
	"ember/report"

	"github.com/llir/llvm/ir/enum"
)

// The enumeration values in this file are a wire contract between the
// compiler and the bridge: the caller treats the specific integer values as
// stable across versions.  New members may be appended, but existing numeric
// values must never change.  The bridge never hands a caller value to the
// backend directly; every family converts through a total mapping whose
// unknown-value default is a fatal internal error.

// AtomicOrdering represents a memory ordering level for atomic operations.
type AtomicOrdering uint32

// Enumeration of atomic ordering levels.  The gap at 3 is part of the
// contract: it was a release-consume level in an earlier backend and its
// number is never reused.
const (
	OrderingNotAtomic              AtomicOrdering = 0
	OrderingUnordered              AtomicOrdering = 1
	OrderingMonotonic              AtomicOrdering = 2
	OrderingAcquire                AtomicOrdering = 4
	OrderingRelease                AtomicOrdering = 5
	OrderingAcquireRelease         AtomicOrdering = 6
	OrderingSequentiallyConsistent AtomicOrdering = 7
)

// String returns the textual name of the ordering level.
func (ao AtomicOrdering) String() string {
	switch ao {
	case OrderingNotAtomic:
		return "not-atomic"
	case OrderingUnordered:
		return "unordered"
	case OrderingMonotonic:
		return "monotonic"
	case OrderingAcquire:
		return "acquire"
	case OrderingRelease:
		return "release"
	case OrderingAcquireRelease:
		return "acq_rel"
	case OrderingSequentiallyConsistent:
		return "seq_cst"
	default:
		return "unknown"
	}
}

func (ao AtomicOrdering) toBackend() enum.AtomicOrdering {
	switch ao {
	case OrderingNotAtomic:
		return enum.AtomicOrderingNone
	case OrderingUnordered:
		return enum.AtomicOrderingUnordered
	case OrderingMonotonic:
		return enum.AtomicOrderingMonotonic
	case OrderingAcquire:
		return enum.AtomicOrderingAcquire
	case OrderingRelease:
		return enum.AtomicOrderingRelease
	case OrderingAcquireRelease:
		return enum.AtomicOrderingAcqRel
	case OrderingSequentiallyConsistent:
		return enum.AtomicOrderingSeqCst
	default:
		report.ICE("invalid atomic ordering value: %d", ao)
		return enum.AtomicOrderingNone
	}
}

// atomicOrderingFromBackend converts a backend ordering level back to the
// caller-side value.
func atomicOrderingFromBackend(ao enum.AtomicOrdering) AtomicOrdering {
	switch ao {
	case enum.AtomicOrderingNone:
		return OrderingNotAtomic
	case enum.AtomicOrderingUnordered:
		return OrderingUnordered
	case enum.AtomicOrderingMonotonic:
		return OrderingMonotonic
	case enum.AtomicOrderingAcquire:
		return OrderingAcquire
	case enum.AtomicOrderingRelease:
		return OrderingRelease
	case enum.AtomicOrderingAcqRel:
		return OrderingAcquireRelease
	case enum.AtomicOrderingSeqCst:
		return OrderingSequentiallyConsistent
	default:
		report.ICE("invalid backend atomic ordering value: %d", ao)
		return OrderingNotAtomic
	}
}

// -----------------------------------------------------------------------------

// SyncScope represents the synchronization scope of an atomic operation.
type SyncScope uint32

// Enumeration of synchronization scopes.
const (
	SyncScopeSingleThread SyncScope = 0
	SyncScopeSystem       SyncScope = 1
)

// The backend spells synchronization scopes as strings; the system scope is
// the unnamed default.
const singleThreadScope = "singlethread"

// toBackend converts the synchronization scope to its backend spelling.
func (ss SyncScope) toBackend() string {
	switch ss {
	case SyncScopeSingleThread:
		return singleThreadScope
	case SyncScopeSystem:
		return ""
	default:
		report.ICE("invalid sync scope value: %d", ss)
		return ""
	}
}

// syncScopeFromBackend converts a backend scope spelling back to the
// caller-side value.
func syncScopeFromBackend(scope string) SyncScope {
	if scope == singleThreadScope {
		return SyncScopeSingleThread
	}

	return SyncScopeSystem
}

// -----------------------------------------------------------------------------

// AtomicRMWOp represents the operation of an atomic read-modify-write
// instruction.
type AtomicRMWOp uint32

// Enumeration of atomic read-modify-write operations.
const (
	AtomicXchg AtomicRMWOp = 0
	AtomicAdd  AtomicRMWOp = 1
	AtomicSub  AtomicRMWOp = 2
	AtomicAnd  AtomicRMWOp = 3
	AtomicNand AtomicRMWOp = 4
	AtomicOr   AtomicRMWOp = 5
	AtomicXor  AtomicRMWOp = 6
	AtomicMax  AtomicRMWOp = 7
	AtomicMin  AtomicRMWOp = 8
	AtomicUMax AtomicRMWOp = 9
	AtomicUMin AtomicRMWOp = 10
)

// toBackend converts the read-modify-write operation to its backend
// equivalent.
func (op AtomicRMWOp) toBackend() enum.AtomicOp {
	switch op {
	case AtomicXchg:
		return enum.AtomicOpXChg
	case AtomicAdd:
		return enum.AtomicOpAdd
	case AtomicSub:
		return enum.AtomicOpSub
	case AtomicAnd:
		return enum.AtomicOpAnd
	case AtomicNand:
		return enum.AtomicOpNAnd
	case AtomicOr:
		return enum.AtomicOpOr
	case AtomicXor:
		return enum.AtomicOpXor
	case AtomicMax:
		return enum.AtomicOpMax
	case AtomicMin:
		return enum.AtomicOpMin
	case AtomicUMax:
		return enum.AtomicOpUMax
	case AtomicUMin:
		return enum.AtomicOpUMin
	default:
		report.ICE("invalid atomic rmw operation value: %d", op)
		return enum.AtomicOpXChg
	}
}

// -----------------------------------------------------------------------------

// Linkage represents the linkage of a global value.
type Linkage uint32

// Enumeration of the different linkages.
const (
	ExternalLinkage            Linkage = 0
	AvailableExternallyLinkage Linkage = 1
	LinkOnceAnyLinkage         Linkage = 2
	LinkOnceODRLinkage         Linkage = 3
	WeakAnyLinkage             Linkage = 4
	WeakODRLinkage             Linkage = 5
	AppendingLinkage           Linkage = 6
	InternalLinkage            Linkage = 7
	PrivateLinkage             Linkage = 8
	ExternalWeakLinkage        Linkage = 9
	CommonLinkage              Linkage = 10
)

// toBackend converts the linkage to its backend equivalent.
func (l Linkage) toBackend() enum.Linkage {
	switch l {
	case ExternalLinkage:
		return enum.LinkageExternal
	case AvailableExternallyLinkage:
		return enum.LinkageAvailableExternally
	case LinkOnceAnyLinkage:
		return enum.LinkageLinkOnce
	case LinkOnceODRLinkage:
		return enum.LinkageLinkOnceODR
	case WeakAnyLinkage:
		return enum.LinkageWeak
	case WeakODRLinkage:
		return enum.LinkageWeakODR
	case AppendingLinkage:
		return enum.LinkageAppending
	case InternalLinkage:
		return enum.LinkageInternal
	case PrivateLinkage:
		return enum.LinkagePrivate
	case ExternalWeakLinkage:
		return enum.LinkageExternWeak
	case CommonLinkage:
		return enum.LinkageCommon
	default:
		report.ICE("invalid linkage value: %d", l)
		return enum.LinkageExternal
	}
}

// linkageFromBackend converts a backend linkage back to the caller-side
// value.
func linkageFromBackend(l enum.Linkage) Linkage {
	switch l {
	case enum.LinkageExternal, enum.LinkageNone:
		return ExternalLinkage
	case enum.LinkageAvailableExternally:
		return AvailableExternallyLinkage
	case enum.LinkageLinkOnce:
		return LinkOnceAnyLinkage
	case enum.LinkageLinkOnceODR:
		return LinkOnceODRLinkage
	case enum.LinkageWeak:
		return WeakAnyLinkage
	case enum.LinkageWeakODR:
		return WeakODRLinkage
	case enum.LinkageAppending:
		return AppendingLinkage
	case enum.LinkageInternal:
		return InternalLinkage
	case enum.LinkagePrivate:
		return PrivateLinkage
	case enum.LinkageExternWeak:
		return ExternalWeakLinkage
	case enum.LinkageCommon:
		return CommonLinkage
	default:
		report.ICE("invalid backend linkage value: %d", l)
		return ExternalLinkage
	}
}

// -----------------------------------------------------------------------------

// Visibility represents the visibility style of a global value.
type Visibility uint32

// Enumeration of the different visibility styles.
const (
	DefaultVisibility   Visibility = 0
	HiddenVisibility    Visibility = 1
	ProtectedVisibility Visibility = 2
)

// toBackend converts the visibility style to its backend equivalent.
func (v Visibility) toBackend() enum.Visibility {
	switch v {
	case DefaultVisibility:
		return enum.VisibilityDefault
	case HiddenVisibility:
		return enum.VisibilityHidden
	case ProtectedVisibility:
		return enum.VisibilityProtected
	default:
		report.ICE("invalid visibility value: %d", v)
		return enum.VisibilityDefault
	}
}

// visibilityFromBackend converts a backend visibility style back to the
// caller-side value.
func visibilityFromBackend(v enum.Visibility) Visibility {
	switch v {
	case enum.VisibilityDefault, enum.VisibilityNone:
		return DefaultVisibility
	case enum.VisibilityHidden:
		return HiddenVisibility
	case enum.VisibilityProtected:
		return ProtectedVisibility
	default:
		report.ICE("invalid backend visibility value: %d", v)
		return DefaultVisibility
	}
}

// -----------------------------------------------------------------------------

// UnnamedAddr represents the significance of a global value's address.
type UnnamedAddr uint32

// Enumeration of the different address significance styles.
const (
	NoUnnamedAddr     UnnamedAddr = 0
	LocalUnnamedAddr  UnnamedAddr = 1
	GlobalUnnamedAddr UnnamedAddr = 2
)

// toBackend converts the address significance to its backend equivalent.
func (ua UnnamedAddr) toBackend() enum.UnnamedAddr {
	switch ua {
	case NoUnnamedAddr:
		return enum.UnnamedAddrNone
	case LocalUnnamedAddr:
		return enum.UnnamedAddrLocalUnnamedAddr
	case GlobalUnnamedAddr:
		return enum.UnnamedAddrUnnamedAddr
	default:
		report.ICE("invalid unnamed address value: %d", ua)
		return enum.UnnamedAddrNone
	}
}

// -----------------------------------------------------------------------------

// CallConv represents a calling convention.
type CallConv uint32

// Enumeration of the different calling conventions.  The numeric values are
// the backend's convention identifiers and are part of the wire contract.
const (
	CCallConv             CallConv = 0
	FastCallConv          CallConv = 8
	ColdCallConv          CallConv = 9
	GHCCallConv           CallConv = 10
	AnyRegCallConv        CallConv = 13
	PreserveMostCallConv  CallConv = 14
	PreserveAllCallConv   CallConv = 15
	SwiftCallConv         CallConv = 16
	X86StdcallCallConv    CallConv = 64
	X86FastcallCallConv   CallConv = 65
	ArmAapcsCallConv      CallConv = 67
	Msp430IntrCallConv    CallConv = 69
	X86ThisCallCallConv   CallConv = 70
	PtxKernelCallConv     CallConv = 71
	X8664SysVCallConv     CallConv = 78
	Win64CallConv         CallConv = 79
	X86VectorCallCallConv CallConv = 80
	X86IntrCallConv       CallConv = 83
	AvrIntrCallConv       CallConv = 85
	AmdGpuKernelCallConv  CallConv = 91
)

// toBackend converts the calling convention to its backend equivalent.
func (cc CallConv) toBackend() enum.CallingConv {
	switch cc {
	case CCallConv:
		return enum.CallingConvC
	case FastCallConv:
		return enum.CallingConvFast
	case ColdCallConv:
		return enum.CallingConvCold
	case GHCCallConv:
		return enum.CallingConvGHC
	case AnyRegCallConv:
		return enum.CallingConvAnyReg
	case PreserveMostCallConv:
		return enum.CallingConvPreserveMost
	case PreserveAllCallConv:
		return enum.CallingConvPreserveAll
	case SwiftCallConv:
		return enum.CallingConvSwift
	case X86StdcallCallConv:
		return enum.CallingConvX86StdCall
	case X86FastcallCallConv:
		return enum.CallingConvX86FastCall
	case ArmAapcsCallConv:
		return enum.CallingConvARM_AAPCS
	case Msp430IntrCallConv:
		return enum.CallingConvMSP430Intr
	case X86ThisCallCallConv:
		return enum.CallingConvX86ThisCall
	case PtxKernelCallConv:
		return enum.CallingConvPTXKernel
	case X8664SysVCallConv:
		return enum.CallingConvX86_64SysV
	case Win64CallConv:
		return enum.CallingConvWin64
	case X86VectorCallCallConv:
		return enum.CallingConvX86VectorCall
	case X86IntrCallConv:
		return enum.CallingConvX86Intr
	case AvrIntrCallConv:
		return enum.CallingConvAVRIntr
	case AmdGpuKernelCallConv:
		return enum.CallingConvAMDGPUKernel
	default:
		report.ICE("invalid calling convention value: %d", cc)
		return enum.CallingConvC
	}
}

// callConvFromBackend converts a backend calling convention back to the
// caller-side value.
func callConvFromBackend(cc enum.CallingConv) CallConv {
	switch cc {
	case enum.CallingConvC, enum.CallingConvNone:
		return CCallConv
	case enum.CallingConvFast:
		return FastCallConv
	case enum.CallingConvCold:
		return ColdCallConv
	case enum.CallingConvGHC:
		return GHCCallConv
	case enum.CallingConvAnyReg:
		return AnyRegCallConv
	case enum.CallingConvPreserveMost:
		return PreserveMostCallConv
	case enum.CallingConvPreserveAll:
		return PreserveAllCallConv
	case enum.CallingConvSwift:
		return SwiftCallConv
	case enum.CallingConvX86StdCall:
		return X86StdcallCallConv
	case enum.CallingConvX86FastCall:
		return X86FastcallCallConv
	case enum.CallingConvARM_AAPCS:
		return ArmAapcsCallConv
	case enum.CallingConvMSP430Intr:
		return Msp430IntrCallConv
	case enum.CallingConvX86ThisCall:
		return X86ThisCallCallConv
	case enum.CallingConvPTXKernel:
		return PtxKernelCallConv
	case enum.CallingConvX86_64SysV:
		return X8664SysVCallConv
	case enum.CallingConvWin64:
		return Win64CallConv
	case enum.CallingConvX86VectorCall:
		return X86VectorCallCallConv
	case enum.CallingConvX86Intr:
		return X86IntrCallConv
	case enum.CallingConvAVRIntr:
		return AvrIntrCallConv
	case enum.CallingConvAMDGPUKernel:
		return AmdGpuKernelCallConv
	default:
		report.ICE("invalid backend calling convention value: %d", cc)
		return CCallConv
	}
}
