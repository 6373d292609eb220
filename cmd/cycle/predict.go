package cycle

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/api"
	phase "github.com/saadjs/cycle-cli/internal/cycle"
	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/model"
)

type predictionOutput struct {
	Kind          string      `json:"kind" yaml:"kind"`
	PredictedDate *model.Date `json:"predicted_date,omitempty" yaml:"predicted_date,omitempty"`
	Confidence    string      `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	DaysUntil     *int        `json:"days_until,omitempty" yaml:"days_until,omitempty"`
	Summary       string      `json:"summary" yaml:"summary"`
}

var predictCmd = &cobra.Command{
	Use:       "predict [period|ovulation]",
	Short:     "Show the next predicted period and ovulation",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"period", "ovulation"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := []string{"period", "ovulation"}
		if len(args) == 1 {
			kinds = []string{args[0]}
		}
		return withSession(cmd, func(rt *runtime) error {
			out := make([]predictionOutput, 0, len(kinds))
			for _, kind := range kinds {
				p, err := forecast(cmd, rt.client, kind)
				if err != nil {
					return err
				}
				out = append(out, p)
			}
			lines := make([]string, 0, len(out))
			for _, p := range out {
				lines = append(lines, p.String())
			}
			return emit(cmd, out, strings.Join(lines, "\n"))
		})
	},
}

func forecast(cmd *cobra.Command, client *api.Client, kind string) (predictionOutput, error) {
	var (
		fc   model.Forecast
		err  error
		k    = phase.KindPeriod
		none = "Add more period data for predictions"
	)
	if kind == "ovulation" {
		k, none = phase.KindOvulation, "Add period data for ovulation predictions"
		fc, err = client.OvulationForecast(cmd.Context())
	} else {
		fc, err = client.PeriodForecast(cmd.Context())
	}
	if err != nil {
		return predictionOutput{}, err
	}
	out := predictionOutput{Kind: kind, Confidence: fc.Confidence, Summary: none}
	if fc.HasDate() {
		cd := phase.CountdownTo(*fc.PredictedDate, now())
		out.PredictedDate = fc.PredictedDate
		out.DaysUntil = &cd.Days
		out.Summary = cd.Describe(k)
	}
	return out, nil
}

func (p predictionOutput) String() string {
	label := "Next period"
	if p.Kind == "ovulation" {
		label = "Next ovulation"
	}
	if p.PredictedDate == nil {
		return fmt.Sprintf("%s: %s", label, p.Summary)
	}
	line := fmt.Sprintf("%s: %s (%s", label, p.PredictedDate.Format("Jan 02, 2006"), p.Summary)
	if p.Confidence != "" {
		line += ", " + p.Confidence + " confidence"
	}
	return line + ")"
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cycle statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(rt *runtime) error {
			stats, err := rt.client.CycleStats(cmd.Context())
			if err != nil {
				return err
			}
			d := stats.Display()
			text := strings.Join([]string{
				"Avg Cycle Length: " + d.AverageCycleLength,
				"Avg Period Length: " + d.AveragePeriodLength,
				fmt.Sprintf("Total Periods: %d", d.TotalPeriods),
				"Regularity: " + d.CycleRegularity,
			}, "\n")
			return emit(cmd, stats, text)
		})
	},
}

var phaseSince string

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Show the current cycle phase",
	Long: "Show the current cycle phase based on your most recent period. " +
		"With --since the phase is computed locally from that start date.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(phaseSince) != "" {
			start, err := model.ParseDate(phaseSince)
			if err != nil {
				return errors.Wrap(errors.ErrCodeValidation, fmt.Sprintf("invalid --since %q (expected YYYY-MM-DD)", phaseSince), err)
			}
			status := phase.CurrentPhase(&model.PeriodRecord{StartDate: start}, now())
			return emit(cmd, status, phaseText(status))
		}
		return withSession(cmd, func(rt *runtime) error {
			periods, err := rt.client.ListPeriods(cmd.Context())
			if err != nil {
				return err
			}
			status := phase.CurrentPhase(phase.Latest(periods), now())
			return emit(cmd, status, phaseText(status))
		})
	},
}

func phaseText(s phase.Status) string {
	text := fmt.Sprintf("%s: %s", s.Phase, s.Description)
	if s.DaysSinceStart != nil {
		text += fmt.Sprintf(" (cycle day %d)", *s.DaysSinceStart+1)
	}
	return text
}

func init() {
	rootCmd.AddCommand(predictCmd, statsCmd, phaseCmd)
	phaseCmd.Flags().StringVar(&phaseSince, "since", "", "Compute from this period start date (YYYY-MM-DD) without contacting the service")
}
