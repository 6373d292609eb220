package cycle

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/form"
	"github.com/saadjs/cycle-cli/internal/model"
	"github.com/saadjs/cycle-cli/internal/service"
	"github.com/saadjs/cycle-cli/internal/session"
)

var (
	authUsername      string
	authEmail         string
	authPassword      string
	authPasswordStdin bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign up and manage the stored session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordInput(cmd)
		if err != nil {
			return err
		}
		f := form.Login{Username: authUsername, Password: password}
		if (strings.TrimSpace(f.Username) == "" || f.Password == "") && interactive() {
			if err := runForm("Login", f.Fields()); err != nil {
				return err
			}
		}
		if err := f.Validate(); err != nil {
			return err
		}
		return withRuntime(cmd, func(rt *runtime) error {
			if err := rt.session.Login(cmd.Context(), f.Username, f.Password); err != nil {
				return err
			}
			user := rt.session.CurrentUser()
			return emit(cmd, user, "Welcome, "+user.Username)
		})
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordInput(cmd)
		if err != nil {
			return err
		}
		f := form.Register{Username: authUsername, Email: authEmail, Password: password}
		if (strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "") && interactive() {
			if err := runForm("Create Account", f.Fields()); err != nil {
				return err
			}
		}
		if err := f.Validate(); err != nil {
			return err
		}
		return withRuntime(cmd, func(rt *runtime) error {
			if err := rt.session.Register(cmd.Context(), f.Username, f.Email, f.Password); err != nil {
				return err
			}
			user := rt.session.CurrentUser()
			return emit(cmd, user, "Account created. Welcome, "+user.Username)
		})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			rt.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

type authStatus struct {
	Authenticated bool        `json:"authenticated" yaml:"authenticated"`
	User          *model.User `json:"user,omitempty" yaml:"user,omitempty"`
	APIURL        string      `json:"api_url" yaml:"api_url"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Verify the stored session against the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *runtime) error {
			token, err := service.TokenStore{DB: rt.db}.LoadToken(cmd.Context())
			if err != nil {
				return err
			}
			status := authStatus{APIURL: rt.settings.APIURL}
			if token != "" && rt.session.Restore(cmd.Context()) == session.Valid {
				status.Authenticated = true
				status.User = rt.session.CurrentUser()
				if claims := session.Inspect(token); !claims.ExpiresAt.IsZero() {
					exp := claims.ExpiresAt
					status.ExpiresAt = &exp
				}
			}
			return emit(cmd, status, status.String())
		})
	},
}

func (s authStatus) String() string {
	if !s.Authenticated {
		return fmt.Sprintf("Not logged in (%s). Run 'cycle auth login'.", s.APIURL)
	}
	line := fmt.Sprintf("Logged in as %s at %s", s.User.Username, s.APIURL)
	if s.ExpiresAt != nil {
		line += fmt.Sprintf("\nSession expires %s", s.ExpiresAt.Local().Format("Jan 02, 2006 15:04"))
	}
	return line
}

// passwordInput returns --password, or one line from stdin with --password-stdin.
func passwordInput(cmd *cobra.Command) (string, error) {
	if !authPasswordStdin {
		return authPassword, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authRegisterCmd, authLogoutCmd, authStatusCmd)

	for _, c := range []*cobra.Command{authLoginCmd, authRegisterCmd} {
		c.Flags().StringVar(&authUsername, "username", "", "Account username")
		c.Flags().StringVar(&authPassword, "password", "", "Account password")
		c.Flags().BoolVar(&authPasswordStdin, "password-stdin", false, "Read the password from stdin")
	}
	authRegisterCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
}
