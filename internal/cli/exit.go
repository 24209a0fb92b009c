// Package cli implements the portscout command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Exit codes reported to the shell.
const (
	ExitCodeSuccess          = 0
	ExitCodeFailure          = 1
	ExitCodeUsage            = 2
	ExitCodeAgentUnreachable = 3
)

// ExitError carries an exit code up to main. Printed marks errors whose
// message already went to stderr.
type ExitError struct {
	Code    int
	Err     error
	Printed bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exitf builds an ExitError with a formatted message.
func Exitf(code int, format string, args ...any) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// usageError reports a misused command: the message and usage text go to
// stderr immediately, and the returned error is marked Printed so main
// does not repeat it.
func usageError(cmd *cobra.Command, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n\n%s", err, cmd.UsageString())
	return &ExitError{Code: ExitCodeUsage, Err: err, Printed: true}
}

// Positional-arg validators that report misuse with the usage exit code.

func argsNone() cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return &ExitError{
				Code: ExitCodeUsage,
				Err:  fmt.Errorf("%q accepts no arguments", cmd.CommandPath()),
			}
		}
		return nil
	}
}

func argsExact(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &ExitError{
				Code: ExitCodeUsage,
				Err:  fmt.Errorf("%q accepts %d argument(s), received %d", cmd.CommandPath(), n, len(args)),
			}
		}
		return nil
	}
}

func argsMax(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return &ExitError{
				Code: ExitCodeUsage,
				Err:  fmt.Errorf("%q accepts at most %d argument(s), received %d", cmd.CommandPath(), n, len(args)),
			}
		}
		return nil
	}
}
