package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrixa-lang/astrixa/internal/diagnostics"
	"github.com/astrixa-lang/astrixa/internal/pipeline"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Type-check an Astrixa file without compiling it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "render diagnostics as JSON")
}

func runCheck(_ *cobra.Command, args []string) error {
	src, filename, err := readSource(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, diags := pipeline.Check(src, cfg)
	if len(diags) == 0 {
		fmt.Printf("%s: no errors\n", filename)
		return nil
	}

	if checkJSON {
		js, err := diagnostics.RenderJSON(diags)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, js)
	} else {
		fmt.Fprintln(os.Stderr, diagnostics.RenderAll(diags))
	}
	return fmt.Errorf("%d diagnostic(s)", len(diags))
}
