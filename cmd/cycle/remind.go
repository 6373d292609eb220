package cycle

import (
	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/remind"
)

var (
	remindSchedule string
	remindOnce     bool
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Print a daily digest of your cycle on a schedule",
	Long: "Print a one-line digest (phase, next period, next ovulation) on a cron schedule " +
		"until interrupted. The schedule defaults to the remind_schedule config value.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			svc := &remind.Service{
				Session: rt.session,
				Fetcher: rt.client,
				Out:     cmd.OutOrStdout(),
				Logger:  rt.logger,
				Now:     now,
			}
			if remindOnce {
				svc.RunOnce(cmd.Context())
				return nil
			}
			schedule := rt.settings.RemindSchedule
			if cmd.Flags().Changed("schedule") {
				schedule = remindSchedule
			}
			return svc.Run(cmd.Context(), schedule)
		})
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().StringVar(&remindSchedule, "schedule", "", "Cron schedule, e.g. \"0 8 * * *\"")
	remindCmd.Flags().BoolVar(&remindOnce, "once", false, "Print one digest and exit")
}
