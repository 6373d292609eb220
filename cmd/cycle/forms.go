package cycle

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/ux"
)

// Swapped in tests to drive forms without a terminal.
var (
	runForm     = ux.RunForm
	interactive = ux.IsInteractive
)

// promptLoop shows a form until submit succeeds. Failures are printed and
// the form is shown again with the entered values intact. A session error
// ends the loop since retrying cannot fix it.
func promptLoop(cmd *cobra.Command, title string, fields []ux.FormField, submit func() error) error {
	for {
		if err := runForm(title, fields); err != nil {
			return err
		}
		err := submit()
		if err == nil {
			return nil
		}
		if errors.Is(err, errors.ErrCodeSessionInvalid) {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), ux.ErrorStyle.Render(err.Error()))
	}
}

func requireTerminal(alternative string) error {
	if interactive() {
		return nil
	}
	return errors.New(errors.ErrCodeValidation, "this view needs an interactive terminal").
		WithSuggestion("Use '" + alternative + "' with flags instead")
}
