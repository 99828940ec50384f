package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrixa-lang/astrixa/internal/runtime"
)

var runCmd = &cobra.Command{
	Use:   "run [file.wat|file.wasm]",
	Short: "Execute a compiled Astrixa module",
	Long: `Load a WAT or pre-converted binary WebAssembly module, instantiate
it with the bundled wazero-backed runtime, and invoke its exported
"main" function. WAT input is converted to binary via wat2wasm if
found on $PATH.

Examples:
  astrixa run program.wat
  astrixa run program.wasm`,
	Args: cobra.ExactArgs(1),
	RunE: runModule,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runModule(_ *cobra.Command, args []string) error {
	path := args[0]
	verbosef("loading %s\n", path)

	ctx := context.Background()
	wasmBytes, err := runtime.LoadModule(ctx, path)
	if err != nil {
		return err
	}

	host := runtime.NewHost(os.Stdout)
	code := host.Execute(ctx, wasmBytes)
	if code != 0 {
		return fmt.Errorf("program exited with code %d", code)
	}
	return nil
}
