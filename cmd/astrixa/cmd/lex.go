package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrixa-lang/astrixa/internal/lexer"
	"github.com/astrixa-lang/astrixa/internal/token"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Dump the token stream for an Astrixa file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(_ *cobra.Command, args []string) error {
	src, _, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(src)
	for {
		tok := l.NextToken()
		fmt.Printf("%-12s %-8q line=%d col=%d\n", tok.Type, tok.Literal, tok.Line, tok.Column)
		if tok.Type == token.EOF {
			break
		}
	}
	if d := l.Err(); d != nil {
		fmt.Fprintln(os.Stderr, d.Render())
		return fmt.Errorf("lexing failed")
	}
	return nil
}
