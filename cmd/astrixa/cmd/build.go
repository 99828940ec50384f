package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrixa-lang/astrixa/internal/diagnostics"
	"github.com/astrixa-lang/astrixa/internal/pipeline"
)

var (
	buildOutput    string
	buildSkipCheck bool
	buildJSON      bool
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile an Astrixa file to WebAssembly Text (WAT)",
	Long: `Compile an Astrixa source file through lex -> parse -> check ->
lower -> optimize -> emit, producing a WAT module.

Examples:
  # Emit WAT to stdout
  astrixa build program.ax

  # Write WAT to a file
  astrixa build program.ax -o program.wat

  # Skip type checking (type errors are not reported; the program is lowered as parsed)
  astrixa build program.ax --skip-check`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output file (default: stdout)")
	buildCmd.Flags().BoolVar(&buildSkipCheck, "skip-check", false, "skip the type checker")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "render diagnostics as JSON")
}

func runBuild(_ *cobra.Command, args []string) error {
	src, filename, err := readSource(args)
	if err != nil {
		return err
	}

	verbosef("building %s\n", filename)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, diags, err := pipeline.Build(src, buildSkipCheck, cfg)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		reportDiagnostics(diags)
		return fmt.Errorf("build failed with %d diagnostic(s)", len(diags))
	}

	verbosef("emitted %d bytes of WAT\n", len(out))

	output := buildOutput
	if output == "" {
		output = cfg.Output
	}
	if output == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

func reportDiagnostics(diags []diagnostics.Diagnostic) {
	if buildJSON {
		js, err := diagnostics.RenderJSON(diags)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Fprintln(os.Stderr, js)
		return
	}
	fmt.Fprintln(os.Stderr, diagnostics.RenderAll(diags))
}
