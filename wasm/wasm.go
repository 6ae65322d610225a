// Package wasm runs the compiler unit as a WebAssembly module under wazero.
//
// The module must export:
//
//	memory                                        the shared linear memory
//	alloc_input(size i32) -> i32                  offset of an input region
//	compile(off, used, format, ppc i32, eps f32, flags i32) -> i32
//	                                              offset of the result header
//
// The command buffer and result layouts are those of package abi. The module
// is instantiated with no imports, so it can reach nothing but its memory.
//
// This repository does not ship a compiler module. Callers bring their own
// binary built for the exports above with no imports, which rules out
// toolchains that link a WASI or JS runtime. The tests exercise the
// protocol against a small hand-assembled module.
package wasm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/gogpu/glyphpoly/abi"
)

// Export names.
const (
	ExportMemory  = "memory"
	ExportAlloc   = "alloc_input"
	ExportCompile = "compile"
)

var (
	// ErrMissingExport is returned when the module lacks a required export
	// or exports it with the wrong signature.
	ErrMissingExport = errors.New("wasm: missing export")

	// ErrClosed is returned by a unit or module after Close.
	ErrClosed = errors.New("wasm: closed")
)

var (
	allocSig   = []api.ValueType{api.ValueTypeI32}
	compileSig = []api.ValueType{
		api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32,
		api.ValueTypeF32, api.ValueTypeI32,
	}
	offsetSig = []api.ValueType{api.ValueTypeI32}
)

// Option configures a Module.
type Option func(*options)

type options struct {
	memoryLimitPages uint32
	logger           *slog.Logger
}

// WithMemoryLimitPages caps the memory of every instance, in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(o *options) {
		if pages > 0 {
			o.memoryLimitPages = pages
		}
	}
}

// WithLogger sets the logger for module diagnostics. Nil keeps the default,
// which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Module is a compiled compiler module. Each unit is a separate instance
// with its own memory, so units of one Module may run in parallel.
type Module struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	log      *slog.Logger
	seq      atomic.Uint64
	closed   atomic.Bool
}

// Compile validates and compiles a WebAssembly binary.
func Compile(ctx context.Context, binary []byte, opts ...Option) (*Module, error) {
	o := options{logger: slog.New(discard{})}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if o.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(o.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	cm, err := rt.CompileModule(ctx, binary)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("wasm: compile module: %w", err)
	}
	if err := checkExports(cm); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	o.logger.Debug("wasm: module compiled", "imports", len(cm.ImportedFunctions()))
	return &Module{runtime: rt, compiled: cm, log: o.logger}, nil
}

func checkExports(cm wazero.CompiledModule) error {
	if _, ok := cm.ExportedMemories()[ExportMemory]; !ok {
		return fmt.Errorf("%w: %s", ErrMissingExport, ExportMemory)
	}
	fns := cm.ExportedFunctions()
	for _, want := range []struct {
		name   string
		params []api.ValueType
	}{
		{ExportAlloc, allocSig},
		{ExportCompile, compileSig},
	} {
		def, ok := fns[want.name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingExport, want.name)
		}
		if !slices.Equal(def.ParamTypes(), want.params) || !slices.Equal(def.ResultTypes(), offsetSig) {
			return fmt.Errorf("%w: %s has signature %v -> %v",
				ErrMissingExport, want.name, def.ParamTypes(), def.ResultTypes())
		}
	}
	return nil
}

// NewUnit instantiates the module.
func (m *Module) NewUnit(ctx context.Context) (*Unit, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	name := fmt.Sprintf("glyphpoly-%d", m.seq.Add(1))
	mod, err := m.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, fmt.Errorf("wasm: instantiate: %w", err)
	}
	return &Unit{
		mod:     mod,
		alloc:   mod.ExportedFunction(ExportAlloc),
		compile: mod.ExportedFunction(ExportCompile),
		log:     m.log.With("instance", name),
	}, nil
}

// Close closes the runtime and every unit created from it.
func (m *Module) Close(ctx context.Context) error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	return m.runtime.Close(ctx)
}

// New compiles binary and returns a single unit that owns the runtime.
func New(ctx context.Context, binary []byte, opts ...Option) (*Unit, error) {
	m, err := Compile(ctx, binary, opts...)
	if err != nil {
		return nil, err
	}
	u, err := m.NewUnit(ctx)
	if err != nil {
		_ = m.Close(ctx)
		return nil, err
	}
	u.owner = m
	return u, nil
}

// Unit is one module instance. It implements abi.Unit.
type Unit struct {
	mod     api.Module
	alloc   api.Function
	compile api.Function
	log     *slog.Logger
	owner   *Module
	closed  bool
}

var _ abi.Unit = (*Unit)(nil)

// Memory implements abi.Unit. api.Memory already has the abi.Memory method set.
func (u *Unit) Memory() abi.Memory {
	return u.mod.Memory()
}

// Reserve implements abi.Unit.
func (u *Unit) Reserve(ctx context.Context, size uint32) (uint32, error) {
	if u.closed {
		return 0, ErrClosed
	}
	res, err := u.alloc.Call(ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("wasm: %s: %w", ExportAlloc, err)
	}
	off := uint32(res[0])
	if uint64(off)+uint64(size) > uint64(u.mod.Memory().Size()) {
		return 0, fmt.Errorf("%w: %s returned %d for %d bytes in %d byte memory",
			abi.ErrOutOfMemory, ExportAlloc, off, size, u.mod.Memory().Size())
	}
	return off, nil
}

// Compile implements abi.Unit.
func (u *Unit) Compile(ctx context.Context, offset, bytesUsed uint32, p abi.Params) (uint32, error) {
	if u.closed {
		return 0, ErrClosed
	}
	res, err := u.compile.Call(ctx,
		uint64(offset),
		uint64(bytesUsed),
		uint64(p.Format),
		uint64(p.PPC),
		api.EncodeF32(p.Eps),
		uint64(p.Flags))
	if err != nil {
		return 0, fmt.Errorf("wasm: %s: %w", ExportCompile, err)
	}
	off := uint32(res[0])
	u.log.Debug("wasm: compile returned", "input", offset, "bytes", bytesUsed, "result", off)
	return off, nil
}

// Close implements abi.Unit. A unit created by New also closes its runtime.
func (u *Unit) Close(ctx context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true
	if u.owner != nil {
		return u.owner.Close(ctx)
	}
	return u.mod.Close(ctx)
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }
