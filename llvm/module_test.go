package llvm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestModuleIdentity(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	m := ctx.NewModule("main.ch")
	if m.SourceFileName() != "main.ch" {
		t.Errorf("source file name not set at creation")
	}

	m.SetTargetTriple("x86_64-unknown-linux-gnu")
	m.SetDataLayout("e-m:e-i64:64-n8:16:32:64-S128")

	if m.TargetTriple() != "x86_64-unknown-linux-gnu" {
		t.Errorf("target triple not preserved")
	}

	if !strings.HasPrefix(m.DataLayout(), "e-m:e") {
		t.Errorf("data layout not preserved")
	}
}

func TestFunctionLookupAndIteration(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	m := ctx.NewModule("main.ch")
	sig := ctx.FunctionTypeOf(ctx.VoidType())

	names := []string{"init", "run", "shutdown"}
	for _, name := range names {
		m.AddFunction(name, sig)
	}

	fn, exists := m.GetFunction("run")
	if !exists || fn.Name() != "run" {
		t.Fatalf("declared function not found by name")
	}

	if _, exists := m.GetFunction("missing"); exists {
		t.Fatalf("lookup of undeclared function succeeded")
	}

	var seen []string
	for it := m.Functions(); it.Next(); {
		seen = append(seen, it.Item().Name())
	}

	if len(seen) != len(names) {
		t.Fatalf("expected %d functions, iterated %d", len(names), len(seen))
	}

	for i, name := range names {
		if seen[i] != name {
			t.Errorf("function %d: expected %q, got %q", i, name, seen[i])
		}
	}
}

func TestGlobalVariableAttributes(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	m := ctx.NewModule("main.ch")
	gv := m.AddGlobalDef("counter", ConstInt(ctx.IntType(64), 0, false))

	gv.SetLinkage(InternalLinkage)
	gv.SetVisibility(HiddenVisibility)
	gv.SetUnnamedAddr(GlobalUnnamedAddr)

	if gv.Linkage() != InternalLinkage {
		t.Errorf("linkage not round-tripped")
	}

	if gv.Visibility() != HiddenVisibility {
		t.Errorf("visibility not round-tripped")
	}

	init, exists := gv.Initializer()
	if !exists || !init.IsConstant() {
		t.Errorf("initializer lost")
	}

	decl := m.AddGlobal("external_state", ctx.IntType(32))
	if _, exists := decl.Initializer(); exists {
		t.Errorf("declaration reports an initializer")
	}
}

func TestVerifyRejectsOpenBlocks(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	m := ctx.NewModule("main.ch")
	fn := m.AddFunction("broken", ctx.FunctionTypeOf(ctx.VoidType()))
	fn.AppendBlock("entry")

	if err := m.Verify(); err == nil {
		t.Fatalf("expected verification to reject a block without a terminator")
	}

	irb := ctx.NewBuilder()
	irb.MoveToEnd(fn.AppendBlock("exit"))
	irb.BuildRetVoid()

	var entry BasicBlock
	for it := fn.Blocks(); it.Next(); {
		entry = it.Item()
		break
	}

	irb.MoveToEnd(entry)
	irb.BuildRetVoid()

	if err := m.Verify(); err != nil {
		t.Fatalf("expected verification to pass, got: %s", err)
	}
}

func TestWriteBufferAndFile(t *testing.T) {
	ctx := NewContext("14.0.0")
	defer ctx.Dispose()

	m := ctx.NewModule("main.ch")
	fn := m.AddFunction("main", ctx.FunctionTypeOf(ctx.VoidType()))

	irb := ctx.NewBuilder()
	irb.MoveToEnd(fn.AppendBlock("entry"))
	irb.BuildRetVoid()

	buf := m.WriteBuffer()
	if buf.Len() == 0 {
		t.Fatalf("serialized module is empty")
	}

	if !strings.Contains(string(buf.Bytes()), "main") {
		t.Errorf("serialized module does not mention its function")
	}

	path := filepath.Join(t.TempDir(), "main.bc")
	if err := m.WriteToFile(path); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back failed: %s", err)
	}

	if len(onDisk) != buf.Len() {
		t.Errorf("file contents differ from the buffer")
	}

	buf.Dispose()
	if buf.Len() != 0 {
		t.Errorf("buffer not released on dispose")
	}

	// Double dispose is a no-op.
	buf.Dispose()
}
