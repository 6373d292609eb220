package cycle

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/app"
	"github.com/saadjs/cycle-cli/internal/db"
	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/session"
)

type doctorReport struct {
	Database      string     `json:"database" yaml:"database"`
	SchemaVersion int        `json:"schema_version" yaml:"schema_version"`
	LatestSchema  int        `json:"latest_schema" yaml:"latest_schema"`
	APIURL        string     `json:"api_url" yaml:"api_url"`
	APIURLSource  app.Source `json:"api_url_source" yaml:"api_url_source"`
	Session       string     `json:"session" yaml:"session"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local database, service address and session",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(rt *runtime) error {
			version, err := db.SchemaVersion(rt.db)
			if err != nil {
				return err
			}
			report := doctorReport{
				Database:      path,
				SchemaVersion: version,
				LatestSchema:  db.LatestSchemaVersion(),
				APIURL:        rt.settings.APIURL,
				APIURLSource:  rt.settings.APIURLSource,
				Session:       rt.session.Restore(cmd.Context()).String(),
			}
			if err := emit(cmd, report, report.String()); err != nil {
				return err
			}
			if report.SchemaVersion != report.LatestSchema {
				return errors.New(errors.ErrCodeStore, "database schema is out of date").
					WithSuggestion("Run 'cycle init'")
			}
			return nil
		})
	},
}

func (r doctorReport) String() string {
	lines := []string{
		"Database: " + r.Database,
		fmt.Sprintf("Schema version: %d/%d", r.SchemaVersion, r.LatestSchema),
		fmt.Sprintf("Service: %s (from %s)", r.APIURL, r.APIURLSource),
		"Session: " + r.Session,
	}
	if r.Session != session.Valid.String() {
		lines = append(lines, "Run 'cycle auth login' to sign in")
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
