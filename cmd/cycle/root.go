package cycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/app"
	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/ux"
)

var (
	dbPath       string
	apiURL       string
	outputFormat string
	logLevel     string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "cycle",
	Short: "cycle tracks your menstrual cycle from the terminal",
	Long: "cycle is a terminal client for a cycle-tracking service: log periods and ovulation, " +
		"see your current phase, predictions and statistics.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := app.LoadEnv(); err != nil {
			return err
		}
		if !ux.ValidFormat(outputFormat) {
			return errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown format %q", outputFormat)).
				WithSuggestion("Use --format text, json or yaml")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the cycle service (env "+app.EnvAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", ux.FormatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env "+app.EnvLogLevel+")")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}
