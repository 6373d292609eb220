package cycle

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/api"
	"github.com/saadjs/cycle-cli/internal/dashboard"
	"github.com/saadjs/cycle-cli/internal/form"
	"github.com/saadjs/cycle-cli/internal/model"
	"github.com/saadjs/cycle-cli/internal/ux"
)

var (
	periodStart       string
	periodEnd         string
	periodFlow        string
	periodSymptoms    string
	periodInteractive bool
	periodDryRun      bool
	periodLimit       int
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Log and list periods",
}

var periodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a period (start date defaults to today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := form.NewPeriod(now())
		if cmd.Flags().Changed("start") {
			f.StartDate = periodStart
		}
		f.EndDate, f.FlowIntensity, f.Symptoms = periodEnd, periodFlow, periodSymptoms

		if periodDryRun {
			if err := f.Validate(); err != nil {
				return err
			}
			body, err := api.EncodePeriod(f.Input())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		}

		return withSession(cmd, func(rt *runtime) error {
			if periodInteractive {
				if err := requireTerminal("cycle period add"); err != nil {
					return err
				}
				return promptLoop(cmd, "Add Period", f.Fields(), func() error { return submitPeriod(cmd, rt, &f) })
			}
			return submitPeriod(cmd, rt, &f)
		})
	},
}

func submitPeriod(cmd *cobra.Command, rt *runtime, f *form.Period) error {
	if err := f.Validate(); err != nil {
		return err
	}
	created, err := rt.client.CreatePeriod(cmd.Context(), f.Input())
	if err != nil {
		return err
	}
	return emit(cmd, created, ux.SuccessStyle.Render("Period added successfully!"))
}

var periodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged periods, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(rt *runtime) error {
			periods, err := rt.client.ListPeriods(cmd.Context())
			if err != nil {
				return err
			}
			if periodLimit > 0 && len(periods) > periodLimit {
				periods = periods[:periodLimit]
			}
			return emit(cmd, periods, periodsText(periods))
		})
	},
}

func periodsText(periods []model.PeriodRecord) string {
	if len(periods) == 0 {
		return "No periods recorded yet"
	}
	lines := make([]string, 0, len(periods))
	for _, p := range periods {
		line := dashboard.PeriodLine(p)
		if p.Symptoms != nil && *p.Symptoms != "" {
			line += " · " + *p.Symptoms
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(periodCmd)
	periodCmd.AddCommand(periodAddCmd, periodListCmd)

	periodAddCmd.Flags().StringVar(&periodStart, "start", "", "Start date YYYY-MM-DD (default today)")
	periodAddCmd.Flags().StringVar(&periodEnd, "end", "", "End date YYYY-MM-DD")
	periodAddCmd.Flags().StringVar(&periodFlow, "flow", "", "Flow intensity: light, medium or heavy")
	periodAddCmd.Flags().StringVar(&periodSymptoms, "symptoms", "", "Symptoms, free text")
	periodAddCmd.Flags().BoolVarP(&periodInteractive, "interactive", "i", false, "Fill the form interactively")
	periodAddCmd.Flags().BoolVar(&periodDryRun, "dry-run", false, "Print the request body without sending it")

	periodListCmd.Flags().IntVar(&periodLimit, "limit", 0, "Show at most N periods (0 for all)")
}
