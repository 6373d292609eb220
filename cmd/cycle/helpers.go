package cycle

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/api"
	"github.com/saadjs/cycle-cli/internal/app"
	"github.com/saadjs/cycle-cli/internal/db"
	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/log"
	"github.com/saadjs/cycle-cli/internal/service"
	"github.com/saadjs/cycle-cli/internal/session"
	"github.com/saadjs/cycle-cli/internal/ux"
)

// now is replaced in tests.
var now = time.Now

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// runtime is everything a command needs to talk to the service.
type runtime struct {
	db       *sql.DB
	settings app.Settings
	logger   *log.Logger
	client   *api.Client
	session  *session.Manager
}

func withRuntime(cmd *cobra.Command, run func(*runtime) error) error {
	return withDB(func(sqldb *sql.DB) error {
		stored, err := service.ListConfig(sqldb)
		if err != nil {
			return err
		}
		settings, err := app.ResolveSettings(stored, app.Overrides{APIURL: apiURL}, nil)
		if err != nil {
			return err
		}
		logger := newLogger(cmd)
		mgr := session.NewManager(nil, service.TokenStore{DB: sqldb}, logger)
		client := &api.Client{
			BaseURL:     settings.APIURL,
			HTTPClient:  &http.Client{Timeout: settings.HTTPTimeout},
			Credentials: mgr,
			Logger:      logger,
		}
		mgr.SetAuthenticator(client)

		return run(&runtime{db: sqldb, settings: settings, logger: logger, client: client, session: mgr})
	})
}

// withSession restores and verifies the stored session before run.
func withSession(cmd *cobra.Command, run func(*runtime) error) error {
	return withRuntime(cmd, func(rt *runtime) error {
		if rt.session.Restore(cmd.Context()) != session.Valid {
			return errors.NewSessionInvalidError(nil)
		}
		return run(rt)
	})
}

func newLogger(cmd *cobra.Command) *log.Logger {
	level := logLevel
	if strings.TrimSpace(level) == "" {
		level = os.Getenv(app.EnvLogLevel)
	}
	return log.New(log.Config{
		Level:  log.ParseLevel(level),
		Format: log.ParseFormat(logFormat),
		Output: cmd.ErrOrStderr(),
	})
}

// emit writes data in the selected format; text uses the provided string.
func emit(cmd *cobra.Command, data any, text string) error {
	if strings.EqualFold(outputFormat, ux.FormatText) || outputFormat == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	f, err := ux.NewFormatter(outputFormat, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	return f.Format(data)
}
