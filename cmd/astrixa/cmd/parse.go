package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrixa-lang/astrixa/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Dump the parsed AST for an Astrixa file",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	src, _, err := readSource(args)
	if err != nil {
		return err
	}

	prog, diag := pipeline.Parse(src)
	if diag != nil {
		fmt.Fprintln(os.Stderr, diag.Render())
		return fmt.Errorf("parsing failed")
	}
	fmt.Print(prog.String())
	return nil
}
