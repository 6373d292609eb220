package ux

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// Field kinds understood by RunForm.
const (
	KindInput    = "input"
	KindPassword = "password"
	KindSelect   = "select"
	KindText     = "text"
)

// FormField binds one prompt to a string. Value holds the default going in
// and the answer coming out, so a retry starts from what was typed.
type FormField struct {
	Kind        string
	Title       string
	Placeholder string
	Options     []string
	Optional    bool
	Value       *string
}

// RunForm shows fields as a single huh form.
func RunForm(title string, fields []FormField) error {
	group := make([]huh.Field, 0, len(fields))
	for _, f := range fields {
		switch f.Kind {
		case KindSelect:
			opts := make([]huh.Option[string], 0, len(f.Options)+1)
			if f.Optional {
				opts = append(opts, huh.NewOption("(none)", ""))
			}
			for _, o := range f.Options {
				opts = append(opts, huh.NewOption(o, o))
			}
			group = append(group, huh.NewSelect[string]().Title(f.Title).Options(opts...).Value(f.Value))
		case KindText:
			group = append(group, huh.NewText().Title(f.Title).Placeholder(f.Placeholder).Value(f.Value))
		case KindPassword:
			group = append(group, huh.NewInput().Title(f.Title).EchoMode(huh.EchoModePassword).Value(f.Value))
		default:
			group = append(group, huh.NewInput().Title(f.Title).Placeholder(f.Placeholder).Value(f.Value))
		}
	}

	form := huh.NewForm(huh.NewGroup(group...).Title(title))
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue
	form := huh.NewForm(huh.NewGroup(huh.NewConfirm().Title(message).Value(&confirmed)))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsAborted reports whether err came from the user cancelling a form.
func IsAborted(err error) bool {
	return stderrors.Is(err, huh.ErrUserAborted)
}
