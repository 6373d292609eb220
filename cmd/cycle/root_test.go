package cycle

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/cycle-cli/internal/apitest"
	"github.com/saadjs/cycle-cli/internal/db"
	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/model"
	"github.com/saadjs/cycle-cli/internal/service"
	"github.com/saadjs/cycle-cli/internal/ux"
)

var fixedToday = time.Date(2024, 3, 20, 9, 0, 0, 0, time.Local)

// resetFlags puts every flag back to its default; cobra keeps parsed values
// between Execute calls on the shared rootCmd.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeSplit runs the CLI and returns stdout and stderr separately so
// log lines never leak into structured output.
func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeSplit(t, args...)
	return out, err
}

type harness struct {
	t      *testing.T
	srv    *apitest.Server
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("CYCLE_API_URL", "")
	t.Setenv("CYCLE_LOG_LEVEL", "")

	restoreNow, restoreForm, restoreInteractive := now, runForm, interactive
	now = func() time.Time { return fixedToday }
	t.Cleanup(func() {
		now, runForm, interactive = restoreNow, restoreForm, restoreInteractive
	})

	srv := apitest.New(t)
	srv.AddUser("ada", "ada@example.com", "secret")
	return &harness{t: t, srv: srv, dbPath: filepath.Join(t.TempDir(), "cycle.db")}
}

func (h *harness) runSplit(args ...string) (string, string, error) {
	h.t.Helper()
	return executeSplit(h.t, append([]string{"--db", h.dbPath, "--api-url", h.srv.URL}, args...)...)
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	out, _, err := h.runSplit(args...)
	return out, err
}

func (h *harness) login() {
	h.t.Helper()
	out, err := h.run("auth", "login", "--username", "ada", "--password", "secret")
	require.NoError(h.t, err)
	require.Contains(h.t, out, "Welcome, ada")
}

func (h *harness) storedToken() string {
	h.t.Helper()
	sqldb, err := db.Open(h.dbPath)
	require.NoError(h.t, err)
	defer sqldb.Close()
	token, err := service.TokenStore{DB: sqldb}.LoadToken(context.Background())
	require.NoError(h.t, err)
	return token
}

func (h *harness) seed() {
	h.t.Helper()
	heavy := "heavy"
	end := model.MustParseDate("2024-03-18")
	h.srv.SeedPeriods("ada",
		model.PeriodRecord{StartDate: model.MustParseDate("2024-02-15")},
		model.PeriodRecord{StartDate: model.MustParseDate("2024-03-14"), EndDate: &end, FlowIntensity: &heavy},
	)
	next := model.MustParseDate("2024-04-11")
	h.srv.SetPeriodForecast(model.Forecast{PredictedDate: &next, Confidence: "medium"})
	avg, total := 28.0, 2
	h.srv.SetStats(model.CycleStatistics{AverageCycleLength: &avg, TotalPeriods: &total})
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestInitCommandIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.db")
	for i := 0; i < 2; i++ {
		out, err := execute(t, "--db", path, "init")
		require.NoError(t, err, "init run %d", i+1)
		assert.Contains(t, out, "Initialized cycle database")
	}
}

func TestLoginThenDashboardSendsBearerToken(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.login()

	token := h.storedToken()
	require.NotEmpty(t, token)

	out, err := h.run()
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, ada")
	assert.Contains(t, out, "Menstrual")
	assert.Contains(t, out, "Cycle day 7")
	assert.Contains(t, out, "In 22 days")
	assert.Contains(t, out, "Mar 14, 2024 - Mar 18 · heavy flow")

	for _, path := range []string{"/api/profile", "/periods", "/ovulation", "/predict/period", "/predict/ovulation", "/cycle-stats"} {
		reqs := h.srv.RequestsTo(http.MethodGet, path)
		require.NotEmpty(t, reqs, path)
		for _, r := range reqs {
			assert.Equal(t, "Bearer "+token, r.Authorization, path)
		}
	}
}

func TestDashboardWithoutSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("dashboard")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSessionInvalid))
	assert.Empty(t, h.srv.RequestsTo(http.MethodGet, "/periods"))
}

func TestRevokedTokenClearsStoredSession(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.RevokeToken(h.storedToken())

	_, err := h.run("stats")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSessionInvalid))
	assert.Empty(t, h.storedToken())
}

func TestLogoutForgetsToken(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.Empty(t, h.storedToken())
}

func TestAuthStatusJSON(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("auth", "status", "--format", "json")
	require.NoError(t, err)

	var status authStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Authenticated)
	require.NotNil(t, status.User)
	assert.Equal(t, "ada", status.User.Username)
	assert.Equal(t, h.srv.URL, status.APIURL)
	assert.NotNil(t, status.ExpiresAt)
}

func TestLoginRejectedKeepsSignedOut(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("auth", "login", "--username", "ada", "--password", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAuthFailed))
	assert.Equal(t, "Invalid username or password", err.Error())
	assert.Empty(t, h.storedToken())
}

func TestDryRunPrintsPayload(t *testing.T) {
	out, err := execute(t, "period", "add", "--start", "2024-03-01", "--end", "2024-03-05", "--flow", "heavy", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, `{"start_date":"2024-03-01","flow_intensity":"heavy","symptoms":null,"end_date":"2024-03-05"}`+"\n", out)

	out, err = execute(t, "ovulation", "add", "--date", "2024-03-14", "--bbt", "98.6", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, `{"ovulation_date":"2024-03-14","basal_body_temperature":98.6,"cervical_mucus":null,"symptoms":null}`+"\n", out)
}

func TestDryRunRejectsInvalidInput(t *testing.T) {
	_, err := execute(t, "ovulation", "add", "--date", "2024-03-14", "--bbt", "warm", "--dry-run")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	_, err = execute(t, "period", "add", "--start", "2024-03-05", "--end", "2024-03-01", "--dry-run")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestAddAndListPeriods(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("period", "add", "--end", "2024-03-24", "--flow", "medium", "--symptoms", "cramps")
	require.NoError(t, err)
	assert.Contains(t, out, "Period added successfully!")

	stored := h.srv.Periods("ada")
	require.Len(t, stored, 1)
	assert.Equal(t, "2024-03-20", stored[0].StartDate.String())

	out, err = h.run("period", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Mar 20, 2024 - Mar 24 · medium flow")
}

func TestAddOvulationSurfacesServiceError(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.Fail(http.MethodPost, "/ovulation", http.StatusBadRequest, `{"error":"Ovulation date is required"}`)

	_, err := h.run("ovulation", "add", "--bbt", "98.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSubmitFailed))
	assert.Equal(t, "Ovulation date is required", err.Error())
}

// fillForm stubs the form runner with one set of answers per call, keyed by
// field title.
func fillForm(t *testing.T, answers ...map[string]string) *int {
	t.Helper()
	calls := 0
	interactive = func() bool { return true }
	runForm = func(_ string, fields []ux.FormField) error {
		if calls >= len(answers) {
			return huh.ErrUserAborted
		}
		for _, f := range fields {
			if v, ok := answers[calls][f.Title]; ok {
				*f.Value = v
			}
		}
		calls++
		return nil
	}
	return &calls
}

func TestOpenAddPeriodRetriesThenShowsDashboard(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.Fail(http.MethodPost, "/periods", http.StatusInternalServerError, `{}`)

	calls := fillForm(t,
		map[string]string{"Start Date *": "2024-03-14", "Flow Intensity": "light"},
		map[string]string{},
	)
	first := runForm
	runForm = func(title string, fields []ux.FormField) error {
		if *calls == 1 {
			h.srv.Recover(http.MethodPost, "/periods")
		}
		return first(title, fields)
	}

	out, errOut, err := h.runSplit("open", "/add-period")
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
	assert.Contains(t, errOut, "Failed to add period")
	assert.Contains(t, out, "Period added successfully!")
	assert.Contains(t, out, "Current Phase")
	assert.Contains(t, out, "Cycle day 7")

	stored := h.srv.Periods("ada")
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].FlowIntensity)
	assert.Equal(t, "light", *stored[0].FlowIntensity)
}

func TestOpenCancelledFormEndsQuietly(t *testing.T) {
	h := newHarness(t)
	h.login()
	fillForm(t)

	out, err := h.run("open", "/add-ovulation")
	require.NoError(t, err)
	assert.NotContains(t, out, "Current Phase")
	assert.Empty(t, h.srv.RequestsTo(http.MethodPost, "/ovulation"))
}

func TestOpenFormNeedsTerminal(t *testing.T) {
	h := newHarness(t)
	h.login()
	interactive = func() bool { return false }

	_, err := h.run("open", "/add-ovulation")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestOpenUnknownPathShowsDashboard(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("open", "/nowhere")
	require.NoError(t, err)
	assert.Contains(t, out, "Current Phase")
	assert.Contains(t, out, "No periods recorded yet")
}

func TestPredictAndStats(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.login()

	out, err := h.run("predict")
	require.NoError(t, err)
	assert.Contains(t, out, "Next period: Apr 11, 2024 (In 22 days, medium confidence)")
	assert.Contains(t, out, "Next ovulation: Add period data for ovulation predictions")

	out, err = h.run("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Avg Cycle Length: 28")
	assert.Contains(t, out, "Avg Period Length: N/A")
	assert.Contains(t, out, "Regularity: Unknown")
}

func TestPhase(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("phase", "--since", "2024-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Follicular")
	assert.Contains(t, out, "(cycle day 11)")

	h.seed()
	h.login()
	out, err = h.run("phase")
	require.NoError(t, err)
	assert.Contains(t, out, "Menstrual")
	assert.Contains(t, out, "(cycle day 7)")
}

func TestConfigSetGetUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.db")

	out, err := execute(t, "--db", path, "config", "set", "api_url", "http://example.test:5001/")
	require.NoError(t, err)
	assert.Contains(t, out, "api_url = http://example.test:5001")

	out, err = execute(t, "--db", path, "config", "get", "api_url")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:5001\n", out)

	_, err = execute(t, "--db", path, "config", "set", "colour", "blue")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfig))

	_, err = execute(t, "--db", path, "config", "set", "remind_schedule", "whenever")
	require.Error(t, err)

	_, err = execute(t, "--db", path, "config", "unset", "api_url")
	require.NoError(t, err)
	_, err = execute(t, "--db", path, "config", "get", "api_url")
	require.Error(t, err)
}

func TestStoredAPIURLIsUsed(t *testing.T) {
	h := newHarness(t)
	_, err := execute(t, "--db", h.dbPath, "config", "set", "api_url", h.srv.URL)
	require.NoError(t, err)

	out, err := execute(t, "--db", h.dbPath, "auth", "login", "--username", "ada", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, ada")
	assert.Len(t, h.srv.RequestsTo(http.MethodPost, "/api/login"), 1)
}

func TestDoctor(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 2/2")
	assert.Contains(t, out, "(from flag)")
	assert.Contains(t, out, "Session: invalid")

	h.login()
	out, err = h.run("doctor", "--format", "json")
	require.NoError(t, err)
	var report doctorReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "valid", report.Session)
}

func TestRemindOnce(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("remind", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "Mar 20, 2024: not signed in")

	h.seed()
	h.login()
	out, err = h.run("remind", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "Mar 20, 2024: Menstrual phase (cycle day 7) · next period: in 22 days")
}

func TestRemindRejectsBadSchedule(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, err := h.run("remind", "--schedule", "not a schedule")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfig))
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	assert.Contains(t, out, `"version"`)
}

func TestUnknownFormat(t *testing.T) {
	_, err := execute(t, "version", "--format", "xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}
