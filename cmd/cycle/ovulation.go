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
	ovulationDate        string
	ovulationBBT         string
	ovulationMucus       string
	ovulationSymptoms    string
	ovulationInteractive bool
	ovulationDryRun      bool
	ovulationLimit       int
)

var ovulationCmd = &cobra.Command{
	Use:   "ovulation",
	Short: "Log and list ovulation data",
}

var ovulationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log ovulation data (date defaults to today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := form.NewOvulation(now())
		if cmd.Flags().Changed("date") {
			f.OvulationDate = ovulationDate
		}
		f.BasalBodyTemperature, f.CervicalMucus, f.Symptoms = ovulationBBT, ovulationMucus, ovulationSymptoms

		if ovulationDryRun {
			if err := f.Validate(); err != nil {
				return err
			}
			body, err := api.EncodeOvulation(f.Input())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		}

		return withSession(cmd, func(rt *runtime) error {
			if ovulationInteractive {
				if err := requireTerminal("cycle ovulation add"); err != nil {
					return err
				}
				return promptLoop(cmd, "Add Ovulation Data", f.Fields(), func() error { return submitOvulation(cmd, rt, &f) })
			}
			return submitOvulation(cmd, rt, &f)
		})
	},
}

func submitOvulation(cmd *cobra.Command, rt *runtime, f *form.Ovulation) error {
	if err := f.Validate(); err != nil {
		return err
	}
	created, err := rt.client.CreateOvulation(cmd.Context(), f.Input())
	if err != nil {
		return err
	}
	return emit(cmd, created, ux.SuccessStyle.Render("Ovulation data added successfully!"))
}

var ovulationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ovulation records, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(rt *runtime) error {
			ovulations, err := rt.client.ListOvulations(cmd.Context())
			if err != nil {
				return err
			}
			if ovulationLimit > 0 && len(ovulations) > ovulationLimit {
				ovulations = ovulations[:ovulationLimit]
			}
			return emit(cmd, ovulations, ovulationsText(ovulations))
		})
	},
}

func ovulationsText(records []model.OvulationRecord) string {
	if len(records) == 0 {
		return "No ovulation data recorded yet"
	}
	lines := make([]string, 0, len(records))
	for _, o := range records {
		line := dashboard.OvulationLine(o)
		if o.Symptoms != nil && *o.Symptoms != "" {
			line += " · " + *o.Symptoms
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(ovulationCmd)
	ovulationCmd.AddCommand(ovulationAddCmd, ovulationListCmd)

	ovulationAddCmd.Flags().StringVar(&ovulationDate, "date", "", "Ovulation date YYYY-MM-DD (default today)")
	ovulationAddCmd.Flags().StringVar(&ovulationBBT, "bbt", "", "Basal body temperature in °F (95-105)")
	ovulationAddCmd.Flags().StringVar(&ovulationMucus, "mucus", "", "Cervical mucus: dry, sticky, creamy, watery or egg-white")
	ovulationAddCmd.Flags().StringVar(&ovulationSymptoms, "symptoms", "", "Symptoms, free text")
	ovulationAddCmd.Flags().BoolVarP(&ovulationInteractive, "interactive", "i", false, "Fill the form interactively")
	ovulationAddCmd.Flags().BoolVar(&ovulationDryRun, "dry-run", false, "Print the request body without sending it")

	ovulationListCmd.Flags().IntVar(&ovulationLimit, "limit", 0, "Show at most N records (0 for all)")
}
