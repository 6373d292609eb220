package cycle

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cycle local configuration",
	Long:  "Manage cycle local configuration. Keys: " + strings.Join(service.ConfigKeys(), ", ") + ".",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConfig(sqldb, args[0], args[1]); err != nil {
				return err
			}
			value, _, err := service.GetConfig(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], value)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show configuration values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if len(args) == 1 {
				value, ok, err := service.GetConfig(sqldb, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return errors.New(errors.ErrCodeConfig, fmt.Sprintf("%s is not set", args[0]))
				}
				return emit(cmd, map[string]string{args[0]: value}, value)
			}

			cfg, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			lines := []string{"KEY\tVALUE"}
			for _, k := range keys {
				lines = append(lines, fmt.Sprintf("%s\t%s", k, cfg[k]))
			}
			return emit(cmd, cfg, strings.Join(lines, "\n"))
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.UnsetConfig(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd, configUnsetCmd)
}
