package cycle

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/dashboard"
	"github.com/saadjs/cycle-cli/internal/form"
	"github.com/saadjs/cycle-cli/internal/nav"
	"github.com/saadjs/cycle-cli/internal/ux"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show phase, predictions, statistics and recent entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Open a view: /, /add-period or /add-ovulation",
	Long: "Open a view by path. Unknown paths open the dashboard. " +
		"The add views show a form and return to the dashboard once the entry is saved.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := string(nav.Dashboard)
		if len(args) == 1 {
			path = args[0]
		}
		return withSession(cmd, func(rt *runtime) error {
			return newRouter(cmd, rt).Run(cmd.Context(), path)
		})
	},
}

func runDashboard(cmd *cobra.Command) error {
	return withSession(cmd, func(rt *runtime) error {
		return renderDashboard(cmd, rt)
	})
}

func renderDashboard(cmd *cobra.Command, rt *runtime) error {
	v := dashboard.Load(cmd.Context(), rt.client, now(), rt.logger)
	v.User = rt.session.CurrentUser()
	return dashboard.Render(cmd.OutOrStdout(), v, outputFormat)
}

func newRouter(cmd *cobra.Command, rt *runtime) *nav.Router {
	r := nav.NewRouter()
	r.Handle(nav.Dashboard, func(ctx context.Context) (nav.View, error) {
		return nav.Done, renderDashboard(cmd, rt)
	})
	r.Handle(nav.AddPeriod, func(ctx context.Context) (nav.View, error) {
		if err := requireTerminal("cycle period add"); err != nil {
			return nav.Done, err
		}
		f := form.NewPeriod(now())
		return afterForm(promptLoop(cmd, nav.AddPeriod.Title(), f.Fields(), func() error {
			return submitPeriod(cmd, rt, &f)
		}))
	})
	r.Handle(nav.AddOvulation, func(ctx context.Context) (nav.View, error) {
		if err := requireTerminal("cycle ovulation add"); err != nil {
			return nav.Done, err
		}
		f := form.NewOvulation(now())
		return afterForm(promptLoop(cmd, nav.AddOvulation.Title(), f.Fields(), func() error {
			return submitOvulation(cmd, rt, &f)
		}))
	})
	return r
}

// afterForm sends a saved entry back to the dashboard. Cancelling the form
// just ends navigation.
func afterForm(err error) (nav.View, error) {
	switch {
	case err == nil:
		return nav.Dashboard, nil
	case ux.IsAborted(err):
		return nav.Done, nil
	default:
		return nav.Done, err
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd, openCmd)
}
