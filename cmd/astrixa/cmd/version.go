package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display detailed version information including commit hash and build date.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(versionReport())
	},
}

func versionReport() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "astrixa version %s\n", Version)
	fmt.Fprintf(&sb, "  commit: %s\n", GitCommit)
	fmt.Fprintf(&sb, "  built:  %s", BuildDate)
	return sb.String()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
