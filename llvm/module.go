package llvm

import (
	"fmt"
	"os"

	"ember/report"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
)

// Module represents a backend module.
type Module struct {
	m *ir.Module

	// The owning context of the module.
	ctx *Context

	// The debug info builder attached to the module, if any.
	dib *DIBuilder
}

// NewModule creates a new module with the given name in the context.
func (c *Context) NewModule(name string) *Module {
	m := &Module{m: ir.NewModule(), ctx: c}
	m.m.SourceFilename = name
	c.takeOwnership(m)
	return m
}

// dispose releases the module's backend resources.
func (m *Module) dispose() {
	m.m = nil
}

// SourceFileName returns the source file name of the module.
func (m *Module) SourceFileName() string {
	return m.m.SourceFilename
}

// SetSourceFileName sets the source file name of the module.
func (m *Module) SetSourceFileName(name string) {
	m.m.SourceFilename = name
}

// TargetTriple returns the target triple string of the module.
func (m *Module) TargetTriple() string {
	return m.m.TargetTriple
}

// SetTargetTriple sets the target triple string of the module.
func (m *Module) SetTargetTriple(triple string) {
	m.m.TargetTriple = triple
}

// DataLayout returns the data layout string of the module.
func (m *Module) DataLayout() string {
	return m.m.DataLayout
}

// SetDataLayout sets the data layout string of the module.
func (m *Module) SetDataLayout(layout string) {
	m.m.DataLayout = layout
}

// -----------------------------------------------------------------------------

// AddFunction adds a new function to the module.
func (m *Module) AddFunction(name string, funcType FunctionType) (fn Function) {
	sig := funcType.t.(*types.FuncType)

	params := make([]*ir.Param, len(sig.Params))
	for i, paramType := range sig.Params {
		params[i] = ir.NewParam(fmt.Sprintf("arg%d", i), paramType)
	}

	fn.f = m.m.NewFunc(name, sig.RetType, params...)
	fn.f.Sig.Variadic = sig.Variadic
	fn.v = fn.f
	return
}

// GetFunction returns the declared function corresponding to name.
func (m *Module) GetFunction(name string) (fn Function, exists bool) {
	for _, f := range m.m.Funcs {
		if f.Name() == name {
			fn.f = f
			fn.v = f
			return fn, true
		}
	}

	return
}

// AddGlobal adds a new global variable declaration of the given content type
// to the module.
func (m *Module) AddGlobal(name string, contentType Type) (gv GlobalVariable) {
	gv.v = m.m.NewGlobal(name, contentType.ll())
	return
}

// AddGlobalDef adds a new global variable definition with the given
// initializer to the module.
func (m *Module) AddGlobalDef(name string, init Constant) (gv GlobalVariable) {
	gv.v = m.m.NewGlobalDef(name, init.v.(constant.Constant))
	return
}

// funcIter is an iterator over the functions of a module.
type funcIter struct {
	funcs []*ir.Func
	ndx   int
}

func (it *funcIter) Item() (fn Function) {
	fn.f = it.funcs[it.ndx]
	fn.v = it.funcs[it.ndx]
	return
}

func (it *funcIter) Next() bool {
	it.ndx++
	return it.ndx < len(it.funcs)
}

// Functions returns an iterator over the functions of the module.
func (m *Module) Functions() Iterator[Function] {
	return &funcIter{funcs: m.m.Funcs, ndx: -1}
}

// -----------------------------------------------------------------------------

// addMetadataDef appends a metadata definition to the module and assigns it
// the next free metadata identifier.
func (m *Module) addMetadataDef(def metadata.Definition) {
	def.SetID(int64(len(m.m.MetadataDefs)))
	m.m.MetadataDefs = append(m.m.MetadataDefs, def)
}

// addNamedMetadata appends a node to the named metadata list of the given
// name, creating the list if needed.
func (m *Module) addNamedMetadata(name string, node metadata.Node) {
	if m.m.NamedMetadataDefs == nil {
		m.m.NamedMetadataDefs = make(map[string]*metadata.NamedDef)
	}

	def, ok := m.m.NamedMetadataDefs[name]
	if !ok {
		def = &metadata.NamedDef{Name: name}
		m.m.NamedMetadataDefs[name] = def
	}

	def.Nodes = append(def.Nodes, node)
}

// -----------------------------------------------------------------------------

// Verify verifies that the module is well-formed.
func (m *Module) Verify() error {
	for _, f := range m.m.Funcs {
		for _, b := range f.Blocks {
			if b.Term == nil {
				return fmt.Errorf("block %q in function %q has no terminator", b.Name(), f.Name())
			}
		}
	}

	return nil
}

// WriteToFile writes the serialized form of the module to a file.
func (m *Module) WriteToFile(filepath string) error {
	buf := m.WriteBuffer()
	defer buf.Dispose()

	if err := os.WriteFile(filepath, buf.Bytes(), 0o644); err != nil {
		report.SetLastError(err.Error())
		return err
	}

	return nil
}

// WriteBuffer serializes the module to its backend-native form by running a
// minimal single-pass pipeline: verify, then emit.  The returned buffer is
// owned by the caller and must be explicitly disposed.
//
// An unverifiable module is a programming error: the bridge built it, so a
// malformed graph means a bridge or caller bug, never bad user input.
func (m *Module) WriteBuffer() *MemoryBuffer {
	if err := m.Verify(); err != nil {
		report.ICE("cannot serialize malformed module: %s", err)
	}

	buf := &MemoryBuffer{data: []byte(m.m.String())}
	m.ctx.takeOwnership(buf)
	return buf
}

// -----------------------------------------------------------------------------

// MemoryBuffer is an owned, serialized byte blob holding the backend-native
// form of a module.  Its contents are read through Bytes and Len only; no
// terminator byte is implied.
type MemoryBuffer struct {
	data []byte
}

// Bytes returns the contents of the memory buffer.
func (mb *MemoryBuffer) Bytes() []byte {
	return mb.data
}

// Len returns the length of the memory buffer in bytes.
func (mb *MemoryBuffer) Len() int {
	return len(mb.data)
}

// Dispose frees the memory buffer.  Using the buffer after disposal is
// undefined.  Disposing an already disposed buffer is a no-op so context
// teardown can safely follow an explicit free.
func (mb *MemoryBuffer) Dispose() {
	mb.data = nil
}

func (mb *MemoryBuffer) dispose() {
	mb.Dispose()
}
