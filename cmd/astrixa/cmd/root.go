package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astrixa-lang/astrixa/internal/config"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// verbose is the persistent --verbose flag, honored by build and run:
// it writes progress lines (the file being built or loaded, the size of
// the emitted WAT) to stderr. check, lex and parse ignore it.
var verbose bool

// configPath is the persistent --config flag: the astrixa.yaml project
// file build and check read for stdlib extensions, optimizer toggles,
// and the default build output path. A missing file is not an error.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "astrixa",
	Short: "Astrixa compiler and runtime",
	Long: `astrixa is the reference toolchain for the Astrixa language: a
small statically-typed language that compiles to WebAssembly Text
(WAT) through a lexer, parser, type checker, IR lowering and
optimization pipeline, and a WAT emitter. A bundled runtime host
(backed by wazero) executes the compiled output directly.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print phase progress to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "astrixa.yaml", "project config file")
}

// loadConfig reads the project config at configPath, reporting load
// errors (malformed YAML) to the caller; a missing file yields
// config.Default() rather than an error.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading %s: %w", configPath, err)
	}
	return cfg, nil
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

func verbosef(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func readSource(args []string) (src, filename string, err error) {
	if len(args) != 1 {
		return "", "", fmt.Errorf("expects exactly one file argument")
	}
	filename = args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return string(content), filename, nil
}
