// Package runtime hosts a compiled Astrixa module: it supplies the
// `env` import object the WAT emitter's stdlib calls expect and drives
// execution via wazero, a pure-Go WebAssembly runtime (spec §4.8/§6).
package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

const banner = "🚀 ASTRIXA Runtime - Executing WASM"

// lookPath is exec.LookPath, overridable in tests so the wat2wasm
// absence path is exercised without depending on the host machine.
var lookPath = exec.LookPath

// Host instantiates and runs a compiled Astrixa WebAssembly module,
// backing every `ai.print`/`ai.println` call with writes to Stdout.
type Host struct {
	Stdout io.Writer
}

// NewHost creates a Host that writes stdlib output to stdout.
func NewHost(stdout io.Writer) *Host {
	return &Host{Stdout: stdout}
}

// Run instantiates wasmBytes, wires the `env` host module, invokes its
// exported `main` function, and returns the process exit code: 0 on
// success, 1 if instantiation, linking, or execution fails.
func (h *Host) Run(ctx context.Context, wasmBytes []byte) (int, error) {
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, v int32) {
			fmt.Fprintf(h.Stdout, "%d", v)
		}).
		Export("print").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, v int32) {
			fmt.Fprintf(h.Stdout, "%d\n", v)
		}).
		Export("println").
		Instantiate(ctx)
	if err != nil {
		return 1, fmt.Errorf("runtime: linking env module: %w", err)
	}

	mod, err := r.Instantiate(ctx, wasmBytes)
	if err != nil {
		return 1, fmt.Errorf("runtime: instantiating module: %w", err)
	}

	main := mod.ExportedFunction("main")
	if main == nil {
		return 1, fmt.Errorf("runtime: module has no exported 'main' function")
	}
	if _, err := main.Call(ctx); err != nil {
		return 1, fmt.Errorf("runtime: executing 'main': %w", err)
	}
	return 0, nil
}

// Execute is the CLI-facing entry point: it prints the banner, runs
// wasmBytes, and prints the completion line from spec §6. It returns
// the exit code the caller should terminate with.
func (h *Host) Execute(ctx context.Context, wasmBytes []byte) int {
	fmt.Fprintln(h.Stdout, banner)
	code, err := h.Run(ctx, wasmBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	fmt.Fprintf(h.Stdout, "✅ Program completed (exit code: %d)\n", code)
	return code
}

// LoadModule reads a module to execute from path: .wasm files are read
// directly, anything else is treated as WAT text and converted via
// wat2wasm (spec §5).
func LoadModule(ctx context.Context, path string) ([]byte, error) {
	if hasSuffix(path, ".wasm") {
		return os.ReadFile(path)
	}
	return convertWAT(ctx, path)
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// convertWAT shells out to wat2wasm (from the WABT toolkit) to produce
// a binary module from WAT text, since wazero's public API accepts
// only the binary format. Absence of wat2wasm on $PATH is reported as
// an actionable error rather than attempted any other way.
func convertWAT(ctx context.Context, watPath string) ([]byte, error) {
	bin, err := lookPath("wat2wasm")
	if err != nil {
		return nil, fmt.Errorf("runtime: wat2wasm not found on $PATH: convert %s to .wasm first (%w)", watPath, err)
	}

	out, err := os.CreateTemp("", "astrixa-*.wasm")
	if err != nil {
		return nil, fmt.Errorf("runtime: creating temp file: %w", err)
	}
	defer os.Remove(out.Name())
	out.Close()

	cmd := exec.CommandContext(ctx, bin, watPath, "-o", out.Name())
	if combined, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("runtime: wat2wasm failed: %s: %w", combined, err)
	}
	return os.ReadFile(out.Name())
}
