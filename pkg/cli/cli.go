// Package cli holds what the command-line tools share: exit codes, the
// database flag and error reporting.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/japaniel/appraise/pkg/db"
)

// Process exit codes. ExitUsage covers bad flags and arguments, and for
// import-corpus also rejected input.
const (
	ExitOK    = 0
	ExitError = 1 // lookup failures and store errors
	ExitUsage = 2
)

// CodedError carries the process exit code for err.
type CodedError struct {
	Code int
	Err  error
}

func (e *CodedError) Error() string { return e.Err.Error() }
func (e *CodedError) Unwrap() error { return e.Err }

// WithCode attaches an exit code to err. A nil err stays nil.
func WithCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Err: err}
}

// Usagef builds a usage error.
func Usagef(format string, args ...any) error {
	return WithCode(ExitUsage, fmt.Errorf(format, args...))
}

// DBOptions are the persistent flags every tool uses to reach the store.
type DBOptions struct {
	Path    string
	Verbose bool
}

// AddDBFlags registers --db and --verbose on cmd.
func AddDBFlags(cmd *cobra.Command, opts *DBOptions) {
	def := db.DefaultConfig()
	cmd.PersistentFlags().StringVar(&opts.Path, "db", def.Path, "path to the SQLite database (env "+db.EnvPath+")")
	cmd.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "log every SQL statement")
}

// Open connects to the store described by opts, logging to stderr.
func (opts DBOptions) Open(stderr io.Writer) (*gorm.DB, error) {
	gdb, err := db.Open(db.Config{
		Path:    opts.Path,
		Verbose: opts.Verbose,
		Logger:  log.New(stderr, "", log.LstdFlags),
	})
	if err != nil {
		return nil, WithCode(ExitError, err)
	}
	return gdb, nil
}

// ExitCode picks the process exit code for the error returned by a command.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ExitError
}

// Configure makes cmd return its errors instead of printing them, with flag
// parsing errors reported as usage errors.
func Configure(cmd *cobra.Command) *cobra.Command {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WithCode(ExitUsage, err)
	})
	return cmd
}

// Main runs cmd with os.Args and exits with the code its error maps to.
// Errors are printed as "<prog>: error: <message>".
func Main(cmd *cobra.Command) {
	err := Configure(cmd).Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: error: %v\n", cmd.Name(), err)
		if ExitCode(err) == ExitUsage {
			fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
		}
	}
	os.Exit(ExitCode(err))
}
