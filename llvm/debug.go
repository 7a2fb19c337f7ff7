package llvm

import (
	"fmt"
	"math"

	"ember/report"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
)

// mdNode is the backend node type carried by a Metadata handle.  Every
// specialized debug node satisfies both the node interface and the field
// interface, so a handle can flow into any metadata operand slot.
type mdNode interface {
	metadata.MDNode
	fmt.Stringer
}

// Metadata is a handle to a debug info metadata node.
type Metadata struct {
	n mdNode
}

// node returns the backend node of md, or nil for the zero handle.
func (md Metadata) node() mdNode {
	return md.n
}

// IsNil returns whether md is the zero handle.
func (md Metadata) IsNil() bool {
	return md.n == nil
}

// File returns the file a scope node is keyed to.  The second return is
// false if the node has no associated file.
func (md Metadata) File() (Metadata, bool) {
	switch v := md.n.(type) {
	case *metadata.DIFile:
		return md, true
	case *metadata.DICompileUnit:
		return Metadata{v.File}, v.File != nil
	case *metadata.DILexicalBlock:
		return Metadata{v.File}, v.File != nil
	case *metadata.DILexicalBlockFile:
		return Metadata{v.File}, v.File != nil
	case *metadata.DISubprogram:
		return Metadata{v.File}, v.File != nil
	case *metadata.DICompositeType:
		return Metadata{v.File}, v.File != nil
	default:
		return Metadata{}, false
	}
}

// -----------------------------------------------------------------------------

// EmissionKind controls how much debug info the compile unit requests.
type EmissionKind uint32

// Enumeration of emission kinds.  The values are frozen.
const (
	EmitNoDebug       EmissionKind = 0
	EmitFullDebug     EmissionKind = 1
	EmitLineTablesOnly EmissionKind = 2
)

func (ek EmissionKind) toBackend() enum.EmissionKind {
	switch ek {
	case EmitNoDebug:
		return enum.EmissionKindNoDebug
	case EmitFullDebug:
		return enum.EmissionKindFullDebug
	case EmitLineTablesOnly:
		return enum.EmissionKindLineTablesOnly
	default:
		report.ICE("unknown emission kind: %d", ek)
		return 0
	}
}

// ChecksumKind identifies the checksum algorithm applied to a source file.
type ChecksumKind uint32

// Enumeration of checksum kinds.  The values are frozen.
const (
	ChecksumNone ChecksumKind = 0
	ChecksumMD5  ChecksumKind = 1
	ChecksumSHA1 ChecksumKind = 2
)

func (ck ChecksumKind) toBackend() enum.ChecksumKind {
	switch ck {
	case ChecksumMD5:
		return enum.ChecksumKindMD5
	case ChecksumSHA1:
		return enum.ChecksumKindSHA1
	default:
		report.ICE("unknown checksum kind: %d", ck)
		return 0
	}
}

// -----------------------------------------------------------------------------

// DIFlags is the debug flag bitset applied to types, members, and
// subprograms.  The bit positions are frozen: the bottom two bits form the
// accessibility subfield, everything above is an independent flag.
type DIFlags uint32

// Enumeration of debug flags.
const (
	FlagZero      DIFlags = 0
	FlagPrivate   DIFlags = 1
	FlagProtected DIFlags = 2
	FlagPublic    DIFlags = 3

	FlagFwdDecl         DIFlags = 1 << 2
	FlagAppleBlock      DIFlags = 1 << 3
	FlagVirtual         DIFlags = 1 << 5
	FlagArtificial      DIFlags = 1 << 6
	FlagExplicit        DIFlags = 1 << 7
	FlagPrototyped      DIFlags = 1 << 8
	FlagObjectPointer   DIFlags = 1 << 10
	FlagVector          DIFlags = 1 << 11
	FlagStaticMember    DIFlags = 1 << 12
	FlagLValueReference DIFlags = 1 << 13
	FlagRValueReference DIFlags = 1 << 14

	flagAccessibility DIFlags = FlagPublic
)

// toBackend translates the bitset bit by bit into the backend flag set.
// Every value of the accessibility subfield is legal, so translation cannot
// fail.
func (f DIFlags) toBackend() enum.DIFlag {
	var out enum.DIFlag

	switch f & flagAccessibility {
	case FlagPrivate:
		out |= enum.DIFlagPrivate
	case FlagProtected:
		out |= enum.DIFlagProtected
	case FlagPublic:
		out |= enum.DIFlagPublic
	}

	bits := []struct {
		from DIFlags
		to   enum.DIFlag
	}{
		{FlagFwdDecl, enum.DIFlagFwdDecl},
		{FlagAppleBlock, enum.DIFlagAppleBlock},
		{FlagVirtual, enum.DIFlagVirtual},
		{FlagArtificial, enum.DIFlagArtificial},
		{FlagExplicit, enum.DIFlagExplicit},
		{FlagPrototyped, enum.DIFlagPrototyped},
		{FlagObjectPointer, enum.DIFlagObjectPointer},
		{FlagVector, enum.DIFlagVector},
		{FlagStaticMember, enum.DIFlagStaticMember},
		{FlagLValueReference, enum.DIFlagLValueReference},
		{FlagRValueReference, enum.DIFlagRValueReference},
	}

	for _, bit := range bits {
		if f&bit.from != 0 {
			out |= bit.to
		}
	}

	return out
}

// diFlagsFromBackend is the inverse of toBackend over the supported bits.
func diFlagsFromBackend(f enum.DIFlag) DIFlags {
	var out DIFlags

	switch {
	case f&enum.DIFlagPublic == enum.DIFlagPublic:
		out |= FlagPublic
	case f&enum.DIFlagPrivate != 0:
		out |= FlagPrivate
	case f&enum.DIFlagProtected != 0:
		out |= FlagProtected
	}

	bits := []struct {
		from enum.DIFlag
		to   DIFlags
	}{
		{enum.DIFlagFwdDecl, FlagFwdDecl},
		{enum.DIFlagAppleBlock, FlagAppleBlock},
		{enum.DIFlagVirtual, FlagVirtual},
		{enum.DIFlagArtificial, FlagArtificial},
		{enum.DIFlagExplicit, FlagExplicit},
		{enum.DIFlagPrototyped, FlagPrototyped},
		{enum.DIFlagObjectPointer, FlagObjectPointer},
		{enum.DIFlagVector, FlagVector},
		{enum.DIFlagStaticMember, FlagStaticMember},
		{enum.DIFlagLValueReference, FlagLValueReference},
		{enum.DIFlagRValueReference, FlagRValueReference},
	}

	for _, bit := range bits {
		if f&bit.from == bit.from && bit.from != 0 {
			out |= bit.to
		}
	}

	return out
}

// DISPFlags is the subprogram flag bitset.  The bit positions are frozen:
// the bottom two bits form the virtuality subfield, everything above is an
// independent flag.
type DISPFlags uint32

// Enumeration of subprogram flags.
const (
	SPFlagZero        DISPFlags = 0
	SPFlagVirtual     DISPFlags = 1
	SPFlagPureVirtual DISPFlags = 2

	SPFlagLocalToUnit    DISPFlags = 4
	SPFlagDefinition     DISPFlags = 8
	SPFlagOptimized      DISPFlags = 16
	SPFlagMainSubprogram DISPFlags = 32

	spFlagVirtuality DISPFlags = 3
)

// Validate checks the bitset for illegal subfield combinations.  The
// virtuality subfield admits only none, virtual, and pure-virtual; both
// virtuality bits set at once names no virtuality level.
func (f DISPFlags) Validate() error {
	if f&spFlagVirtuality == spFlagVirtuality {
		return fmt.Errorf("invalid virtuality subfield in subprogram flags: %d", f&spFlagVirtuality)
	}

	return nil
}

func (f DISPFlags) toBackend() enum.DISPFlag {
	if err := f.Validate(); err != nil {
		report.ICE("%s", err)
	}

	var out enum.DISPFlag

	switch f & spFlagVirtuality {
	case SPFlagVirtual:
		out |= enum.DISPFlagVirtual
	case SPFlagPureVirtual:
		out |= enum.DISPFlagPureVirtual
	}

	if f&SPFlagLocalToUnit != 0 {
		out |= enum.DISPFlagLocalToUnit
	}
	if f&SPFlagDefinition != 0 {
		out |= enum.DISPFlagDefinition
	}
	if f&SPFlagOptimized != 0 {
		out |= enum.DISPFlagOptimized
	}
	if f&SPFlagMainSubprogram != 0 {
		out |= enum.DISPFlagMainSubprogram
	}

	return out
}

// dispFlagsFromBackend is the inverse of toBackend.
func dispFlagsFromBackend(f enum.DISPFlag) DISPFlags {
	var out DISPFlags

	if f&enum.DISPFlagPureVirtual != 0 {
		out |= SPFlagPureVirtual
	} else if f&enum.DISPFlagVirtual != 0 {
		out |= SPFlagVirtual
	}

	if f&enum.DISPFlagLocalToUnit != 0 {
		out |= SPFlagLocalToUnit
	}
	if f&enum.DISPFlagDefinition != 0 {
		out |= SPFlagDefinition
	}
	if f&enum.DISPFlagOptimized != 0 {
		out |= SPFlagOptimized
	}
	if f&enum.DISPFlagMainSubprogram != 0 {
		out |= SPFlagMainSubprogram
	}

	return out
}

// -----------------------------------------------------------------------------

// DIBuilder builds the debug info metadata tree of a module.  One builder
// exists per module, and it must be finalized exactly once before disposal:
// disposing an unfinalized builder leaves an incomplete debug info graph
// behind and is flagged through the diagnostic channel.
type DIBuilder struct {
	m *Module

	cu *metadata.DICompileUnit

	// Nodes retained until finalization attaches them to the compile unit.
	enums   []metadata.Field
	globals []metadata.Field

	finalized bool
}

// NewDIBuilder creates the debug info builder for the module.
func (m *Module) NewDIBuilder() *DIBuilder {
	if m.dib != nil {
		report.ICE("module already has a debug info builder")
	}

	dib := &DIBuilder{m: m}
	m.dib = dib
	m.ctx.takeOwnership(dib)
	return dib
}

// def registers a node as a metadata definition of the owning module and
// wraps it in a handle.
func (dib *DIBuilder) def(node metadata.Definition) Metadata {
	dib.m.addMetadataDef(node)
	return Metadata{node}
}

// tuple builds a metadata tuple from a list of handles.  A nil slice yields
// an empty tuple, never a null operand.
func (dib *DIBuilder) tuple(elems []Metadata) *metadata.Tuple {
	t := &metadata.Tuple{}
	for _, elem := range elems {
		t.Fields = append(t.Fields, elem.n)
	}

	dib.m.addMetadataDef(t)
	return t
}

// Finalize completes the debug info graph: the retained enumeration and
// global variable lists are attached to the compile unit.  Finalizing twice
// is a programming error.
func (dib *DIBuilder) Finalize() {
	if dib.finalized {
		report.ICE("debug info builder finalized twice")
	}

	dib.finalized = true

	if dib.cu != nil {
		if len(dib.enums) > 0 {
			t := &metadata.Tuple{Fields: dib.enums}
			dib.m.addMetadataDef(t)
			dib.cu.Enums = t
		}

		if len(dib.globals) > 0 {
			t := &metadata.Tuple{Fields: dib.globals}
			dib.m.addMetadataDef(t)
			dib.cu.Globals = t
		}
	}
}

// dispose releases the builder.  An unfinalized builder at disposal is a
// leak, not a crash: the incomplete graph is reported and dropped.
func (dib *DIBuilder) dispose() {
	if !dib.finalized {
		dib.m.ctx.handleDiagnostic(debugLeakDiagnostic{
			module: dib.m.SourceFileName(),
		})
	}

	dib.m.dib = nil
	dib.m = nil
}

// Dispose explicitly releases the builder ahead of context teardown.
func (dib *DIBuilder) Dispose() {
	if dib.m != nil {
		dib.dispose()
	}
}

// debugLeakDiagnostic flags a debug info builder that was disposed without
// being finalized.
type debugLeakDiagnostic struct {
	module string
}

func (d debugLeakDiagnostic) Severity() DiagnosticSeverity {
	return SeverityWarning
}

func (d debugLeakDiagnostic) Message() string {
	return fmt.Sprintf("debug info builder for module `%s` disposed without finalize; debug info graph is incomplete", d.module)
}

// -----------------------------------------------------------------------------

// CompileUnitOptions collects the arguments of CreateCompileUnit.
type CompileUnitOptions struct {
	// The numeric source language tag.
	Language uint32

	File     Metadata
	Producer string

	Optimized      bool
	Flags          string
	RuntimeVersion uint32

	// The name of the split debug info file, if split debug info is in use.
	SplitName          string
	SplitDebugInlining bool

	EmissionKind EmissionKind
}

// CreateCompileUnit creates the root compile unit scope of the module.
func (dib *DIBuilder) CreateCompileUnit(opts CompileUnitOptions) Metadata {
	file, _ := opts.File.n.(*metadata.DIFile)
	if file == nil {
		report.ICE("compile unit requires a file node")
	}

	cu := &metadata.DICompileUnit{
		Distinct:           true,
		Language:           enum.DwarfLang(opts.Language),
		File:               file,
		Producer:           opts.Producer,
		IsOptimized:        opts.Optimized,
		Flags:              opts.Flags,
		RuntimeVersion:     uint64(opts.RuntimeVersion),
		SplitDebugFilename: opts.SplitName,
		SplitDebugInlining: opts.SplitDebugInlining,
		EmissionKind:       opts.EmissionKind.toBackend(),
	}

	dib.cu = cu
	dib.m.addNamedMetadata("llvm.dbg.cu", cu)
	return dib.def(cu)
}

// CreateFile creates a file node, optionally carrying a content checksum.
// ChecksumNone means no checksum is recorded and the digest is ignored.
func (dib *DIBuilder) CreateFile(filename, directory string, csKind ChecksumKind, checksum string) Metadata {
	file := &metadata.DIFile{
		Filename:  filename,
		Directory: directory,
	}

	if csKind != ChecksumNone {
		file.Checksumkind = csKind.toBackend()
		file.Checksum = checksum
	}

	return dib.def(file)
}

// -----------------------------------------------------------------------------

// CreateBasicType creates a primitive type node with the given bit width and
// numeric encoding tag.
func (dib *DIBuilder) CreateBasicType(name string, sizeBits uint64, encoding uint32) Metadata {
	return dib.def(&metadata.DIBasicType{
		Tag:      enum.DwarfTagBaseType,
		Name:     name,
		Size:     sizeBits,
		Encoding: enum.DwarfAttEncoding(encoding),
	})
}

// CreatePointerType creates a pointer type node.
func (dib *DIBuilder) CreatePointerType(pointee Metadata, sizeBits, alignBits uint64, name string) Metadata {
	return dib.def(&metadata.DIDerivedType{
		Tag:      enum.DwarfTagPointerType,
		Name:     name,
		BaseType: pointee.n,
		Size:     sizeBits,
		Align:    alignBits,
	})
}

// CreateTypedef creates a typedef node aliasing base.
func (dib *DIBuilder) CreateTypedef(base Metadata, name string, file Metadata, line uint32, scope Metadata) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DIDerivedType{
		Tag:      enum.DwarfTagTypedef,
		Name:     name,
		Scope:    scope.n,
		File:     f,
		Line:     int64(line),
		BaseType: base.n,
	})
}

// CreateMemberType creates a member field node for a composite type.
func (dib *DIBuilder) CreateMemberType(scope Metadata, name string, file Metadata, line uint32, sizeBits, alignBits, offsetBits uint64, flags DIFlags, baseType Metadata) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DIDerivedType{
		Tag:      enum.DwarfTagMember,
		Name:     name,
		Scope:    scope.n,
		File:     f,
		Line:     int64(line),
		BaseType: baseType.n,
		Size:     sizeBits,
		Align:    alignBits,
		Offset:   offsetBits,
		Flags:    flags.toBackend(),
	})
}

// createComposite creates a composite type node with the given tag.
func (dib *DIBuilder) createComposite(tag enum.DwarfTag, scope Metadata, name string, file Metadata, line uint32, sizeBits, alignBits uint64, flags DIFlags, elements []Metadata, uniqueID string) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DICompositeType{
		Tag:        tag,
		Name:       name,
		Scope:      scope.n,
		File:       f,
		Line:       int64(line),
		Size:       sizeBits,
		Align:      alignBits,
		Flags:      flags.toBackend(),
		Elements:   dib.tuple(elements),
		Identifier: uniqueID,
	})
}

// CreateStructType creates a structure type node.  The element list may be
// a forward declaration patched later with ReplaceCompositeElements.
func (dib *DIBuilder) CreateStructType(scope Metadata, name string, file Metadata, line uint32, sizeBits, alignBits uint64, flags DIFlags, elements []Metadata, uniqueID string) Metadata {
	return dib.createComposite(enum.DwarfTagStructureType, scope, name, file, line, sizeBits, alignBits, flags, elements, uniqueID)
}

// CreateUnionType creates a union type node.
func (dib *DIBuilder) CreateUnionType(scope Metadata, name string, file Metadata, line uint32, sizeBits, alignBits uint64, flags DIFlags, elements []Metadata, uniqueID string) Metadata {
	return dib.createComposite(enum.DwarfTagUnionType, scope, name, file, line, sizeBits, alignBits, flags, elements, uniqueID)
}

// CreateEnumerator creates a single enumerator constant.
func (dib *DIBuilder) CreateEnumerator(name string, value int64, unsigned bool) Metadata {
	return dib.def(&metadata.DIEnumerator{
		Name:       name,
		Value:      value,
		IsUnsigned: unsigned,
	})
}

// CreateEnumerationType creates an enumeration type node from previously
// created enumerators.  The node is retained on the compile unit at
// finalization.
func (dib *DIBuilder) CreateEnumerationType(scope Metadata, name string, file Metadata, line uint32, sizeBits, alignBits uint64, enumerators []Metadata, underlying Metadata) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	node := &metadata.DICompositeType{
		Tag:      enum.DwarfTagEnumerationType,
		Name:     name,
		Scope:    scope.n,
		File:     f,
		Line:     int64(line),
		Size:     sizeBits,
		Align:    alignBits,
		BaseType: underlying.n,
		Elements: dib.tuple(enumerators),
	}

	dib.enums = append(dib.enums, node)
	return dib.def(node)
}

// CreateSubrange creates an array subrange descriptor.
func (dib *DIBuilder) CreateSubrange(lowerBound, count int64) Metadata {
	return dib.def(&metadata.DISubrange{
		Count:      metadata.IntLit(count),
		LowerBound: metadata.IntLit(lowerBound),
	})
}

// CreateArrayType creates an array type node over one or more subranges.
func (dib *DIBuilder) CreateArrayType(sizeBits, alignBits uint64, elemType Metadata, subranges []Metadata) Metadata {
	return dib.def(&metadata.DICompositeType{
		Tag:      enum.DwarfTagArrayType,
		Size:     sizeBits,
		Align:    alignBits,
		BaseType: elemType.n,
		Elements: dib.tuple(subranges),
	})
}

// CreateSubroutineType creates a subroutine type node.  The first parameter
// type is the return type, which may be the zero handle for void.
func (dib *DIBuilder) CreateSubroutineType(paramTypes []Metadata, flags DIFlags) Metadata {
	t := &metadata.Tuple{}
	for _, paramType := range paramTypes {
		t.Fields = append(t.Fields, fieldOrNull(paramType))
	}

	dib.m.addMetadataDef(t)
	return dib.def(&metadata.DISubroutineType{
		Flags: flags.toBackend(),
		Types: t,
	})
}

// fieldOrNull maps the zero handle to the null metadata operand.
func fieldOrNull(md Metadata) metadata.Field {
	if md.n == nil {
		return metadata.Null
	}

	return md.n
}

// -----------------------------------------------------------------------------

// CreateVariantPart creates a variant part node: the tagged-union construct
// describing a sum type.  It owns a discriminator member plus a set of
// variant members, each conditioned on a discriminant constant.
func (dib *DIBuilder) CreateVariantPart(scope Metadata, name string, file Metadata, line uint32, sizeBits, alignBits uint64, flags DIFlags, discriminator Metadata, members []Metadata, uniqueID string) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DICompositeType{
		Tag:           enum.DwarfTagVariantPart,
		Name:          name,
		Scope:         scope.n,
		File:          f,
		Line:          int64(line),
		Size:          sizeBits,
		Align:         alignBits,
		Flags:         flags.toBackend(),
		Elements:      dib.tuple(members),
		Discriminator: discriminator.n,
		Identifier:    uniqueID,
	})
}

// CreateVariantMemberType creates a member of a variant part, active when
// the discriminator holds the given discriminant constant.  A nil
// discriminant marks the member as unconditional.
func (dib *DIBuilder) CreateVariantMemberType(scope Metadata, name string, file Metadata, line uint32, sizeBits, alignBits, offsetBits uint64, discriminant *Constant, flags DIFlags, baseType Metadata) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	node := &metadata.DIDerivedType{
		Tag:      enum.DwarfTagMember,
		Name:     name,
		Scope:    scope.n,
		File:     f,
		Line:     int64(line),
		BaseType: baseType.n,
		Size:     sizeBits,
		Align:    alignBits,
		Offset:   offsetBits,
		Flags:    flags.toBackend(),
	}

	if discriminant != nil {
		node.ExtraData = discriminant.v.(*constant.Int)
	}

	return dib.def(node)
}

// -----------------------------------------------------------------------------

// CreateLexicalBlock creates a lexical scope block node.
func (dib *DIBuilder) CreateLexicalBlock(scope Metadata, file Metadata, line, col uint32) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DILexicalBlock{
		Distinct: true,
		Scope:    scope.n,
		File:     f,
		Line:     int64(line),
		Column:   int64(col),
	})
}

// CreateLexicalBlockFile creates a scope node rebinding an existing scope to
// a different file without opening a nested block.
func (dib *DIBuilder) CreateLexicalBlockFile(scope Metadata, file Metadata) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DILexicalBlockFile{
		Distinct: true,
		Scope:    scope.n,
		File:     f,
	})
}

// CreateNamespace creates a namespace scope node.
func (dib *DIBuilder) CreateNamespace(scope Metadata, name string, exportSymbols bool) Metadata {
	return dib.def(&metadata.DINamespace{
		Distinct:      true,
		Scope:         scope.n,
		Name:          name,
		ExportSymbols: exportSymbols,
	})
}

// -----------------------------------------------------------------------------

// SubprogramOptions collects the arguments of CreateFunction.
type SubprogramOptions struct {
	Scope       Metadata
	Name        string
	LinkageName string
	File        Metadata
	Line        uint32

	// The subroutine type of the subprogram.
	Type Metadata

	ScopeLine uint32
	Flags     DIFlags
	SPFlags   DISPFlags

	TemplateParams []Metadata

	// An earlier forward declaration this subprogram resolves, if any.
	Decl Metadata
}

// CreateFunction creates a subprogram node and, when fn is non-nil, attaches
// it to the function as its debug subprogram.
func (dib *DIBuilder) CreateFunction(fn *Function, opts SubprogramOptions) Metadata {
	f, _ := opts.File.n.(*metadata.DIFile)
	sig, _ := opts.Type.n.(*metadata.DISubroutineType)
	if sig == nil {
		report.ICE("subprogram requires a subroutine type node")
	}

	sp := &metadata.DISubprogram{
		Distinct:    opts.SPFlags&SPFlagDefinition != 0,
		Scope:       opts.Scope.n,
		Name:        opts.Name,
		LinkageName: opts.LinkageName,
		File:        f,
		Line:        int64(opts.Line),
		Type:        sig,
		ScopeLine:   int64(opts.ScopeLine),
		Flags:     opts.Flags.toBackend(),
		SPFlags:   opts.SPFlags.toBackend(),
		Unit:      dib.cu,
	}

	if opts.Decl.n != nil {
		sp.Declaration = opts.Decl.n
	}

	if len(opts.TemplateParams) > 0 {
		sp.TemplateParams = dib.tuple(opts.TemplateParams)
	}

	if fn != nil {
		fn.f.Metadata = append(fn.f.Metadata, &metadata.Attachment{
			Name: "dbg",
			Node: sp,
		})
	}

	return dib.def(sp)
}

// CreateTemplateTypeParameter creates a template type parameter node.
func (dib *DIBuilder) CreateTemplateTypeParameter(name string, ty Metadata) Metadata {
	return dib.def(&metadata.DITemplateTypeParameter{
		Name: name,
		Type: ty.n,
	})
}

// -----------------------------------------------------------------------------

// CreateStaticVariable creates a global variable node bound to a backend
// global.  If the global's initializer is a simple integer or floating-point
// constant, a constant-value expression is attached so debuggers can display
// the value without a memory read.
func (dib *DIBuilder) CreateStaticVariable(scope Metadata, name, linkageName string, file Metadata, line uint32, ty Metadata, isLocal bool, global GlobalVariable) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	gv := &metadata.DIGlobalVariable{
		Distinct:     true,
		Name:         name,
		LinkageName:  linkageName,
		Scope:        scope.n,
		File:         f,
		Line:         int64(line),
		Type:         ty.n,
		IsLocal:      isLocal,
		IsDefinition: true,
	}
	dib.m.addMetadataDef(gv)

	expr := &metadata.DIExpression{}
	if init, exists := global.Initializer(); exists {
		expr.Fields = constValueFields(init)
	}
	dib.m.addMetadataDef(expr)

	gve := &metadata.DIGlobalVariableExpression{Var: gv, Expr: expr}
	dib.m.addMetadataDef(gve)
	dib.globals = append(dib.globals, gve)

	global.global().Metadata = append(global.global().Metadata, &metadata.Attachment{
		Name: "dbg",
		Node: gve,
	})

	return Metadata{gve}
}

// constValueFields encodes a scalar initializer as a constant-value
// expression, or nil when the initializer has no scalar encoding.
// Floating-point values are bitcast to their IEEE integer payload.
func constValueFields(init Constant) []metadata.DIExpressionField {
	var payload uint64

	switch c := init.v.(type) {
	case *constant.Int:
		payload = c.X.Uint64()
	case *constant.Float:
		if c.NaN {
			return nil
		}

		f, _ := c.X.Float64()
		switch c.Typ.Kind {
		case types.FloatKindFloat:
			payload = uint64(math.Float32bits(float32(f)))
		case types.FloatKindDouble:
			payload = math.Float64bits(f)
		default:
			return nil
		}
	default:
		return nil
	}

	return []metadata.DIExpressionField{
		enum.DwarfOpConstu,
		metadata.UintLit(payload),
		enum.DwarfOpStackValue,
	}
}

// CreateAutoVariable creates a local variable node for a non-parameter
// local.
func (dib *DIBuilder) CreateAutoVariable(scope Metadata, name string, file Metadata, line uint32, ty Metadata, alignBits uint64, flags DIFlags) Metadata {
	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DILocalVariable{
		Name:  name,
		Scope: scope.n,
		File:  f,
		Line:  int64(line),
		Type:  ty.n,
		Align: alignBits,
		Flags: flags.toBackend(),
	})
}

// CreateParameterVariable creates a local variable node for a parameter.
// Parameter numbering starts at one.
func (dib *DIBuilder) CreateParameterVariable(scope Metadata, name string, argNo uint32, file Metadata, line uint32, ty Metadata, flags DIFlags) Metadata {
	if argNo == 0 {
		report.ICE("parameter variable requires an argument number of at least 1")
	}

	f, _ := file.n.(*metadata.DIFile)
	return dib.def(&metadata.DILocalVariable{
		Name:  name,
		Arg:   uint64(argNo),
		Scope: scope.n,
		File:  f,
		Line:  int64(line),
		Type:  ty.n,
		Flags: flags.toBackend(),
	})
}

// -----------------------------------------------------------------------------

// DILocation is a handle to a debug location node.
type DILocation struct {
	loc *metadata.DILocation
}

// Line returns the source line of the location.
func (dl DILocation) Line() uint32 {
	return uint32(dl.loc.Line)
}

// Column returns the source column of the location.
func (dl DILocation) Column() uint32 {
	return uint32(dl.loc.Column)
}

// Scope returns the scope node of the location.
func (dl DILocation) Scope() Metadata {
	return Metadata{dl.loc.Scope.(mdNode)}
}

// InlinedAt returns the location this one was inlined at, if any.
func (dl DILocation) InlinedAt() (DILocation, bool) {
	if dl.loc.InlinedAt == nil {
		return DILocation{}, false
	}

	return DILocation{dl.loc.InlinedAt}, true
}

// CreateDebugLocation creates a debug location node.  The zero inlinedAt
// handle means the location is not inlined.
func (dib *DIBuilder) CreateDebugLocation(line, col uint32, scope Metadata, inlinedAt DILocation) DILocation {
	loc := &metadata.DILocation{
		Line:   int64(line),
		Column: int64(col),
		Scope:  scope.n,
	}

	if inlinedAt.loc != nil {
		loc.InlinedAt = inlinedAt.loc
	}

	dib.m.addMetadataDef(loc)
	return DILocation{loc}
}

// Address bytecode opcodes accepted by InsertDeclareAtEnd.  The values are
// the DWARF expression opcodes themselves and are frozen.
const (
	OpDeref      uint64 = 0x06
	OpPlusUconst uint64 = 0x23
)

// InsertDeclareAtEnd inserts a variable declaration marker at the end of a
// basic block, binding storage to the variable node through the given
// address bytecode.  The bytecode admits exactly two opcodes: dereference,
// and add-unsigned-constant followed by its operand.
func (dib *DIBuilder) InsertDeclareAtEnd(storage Value, variable Metadata, addr []uint64, loc DILocation, bb BasicBlock) {
	expr := &metadata.DIExpression{}
	for i := 0; i < len(addr); i++ {
		switch addr[i] {
		case OpDeref:
			expr.Fields = append(expr.Fields, enum.DwarfOpDeref)
		case OpPlusUconst:
			i++
			if i == len(addr) {
				report.ICE("address bytecode ends with operand-taking opcode")
			}

			expr.Fields = append(expr.Fields, enum.DwarfOpPlusUconst, metadata.UintLit(addr[i]))
		default:
			report.ICE("unknown address bytecode opcode: %d", addr[i])
		}
	}
	dib.m.addMetadataDef(expr)

	irb := &IRBuilder{ctx: dib.m.ctx, block: bb.b}
	declare := irb.getIntrinsic("llvm.dbg.declare", types.Void, types.Metadata, types.Metadata, types.Metadata)

	call := bb.b.NewCall(declare,
		&metadata.Value{Value: storage.ll()},
		&metadata.Value{Value: variable.n},
		&metadata.Value{Value: expr},
	)
	call.Metadata = append(call.Metadata, &metadata.Attachment{
		Name: "dbg",
		Node: loc.loc,
	})
}

// -----------------------------------------------------------------------------

// ReplaceCompositeElements patches the element and template parameter arrays
// of a composite type in place.  Recursive types are declared with a
// placeholder element list and patched once their member types exist.
func (dib *DIBuilder) ReplaceCompositeElements(composite Metadata, elements, templateParams []Metadata) {
	node, ok := composite.n.(*metadata.DICompositeType)
	if !ok {
		report.ICE("element patching applied to non-composite node")
	}

	node.Elements = dib.tuple(elements)
	if templateParams != nil {
		node.TemplateParams = dib.tuple(templateParams)
	}
}
