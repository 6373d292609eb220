package cycle

import (
	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()
		return emit(cmd, info, info.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
