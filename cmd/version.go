package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/booruterm/booruterm/internal/version"
)

// VersionCmd prints build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.Get().String())
	},
}
