package main

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/japaniel/appraise/pkg/cli"
	"github.com/japaniel/appraise/pkg/corpus"
	"github.com/japaniel/appraise/pkg/db"
)

type options struct {
	db                cli.DBOptions
	errorOnDuplicates bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "import-corpus [-e] FILE",
		Short: "Import a source document and its system translations from ranking XML",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return cli.Usagef("expected exactly one XML file, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cli.AddDBFlags(cmd, &opts.db)
	cmd.Flags().BoolVarP(&opts.errorOnDuplicates, "error-on-duplicates", "e", false,
		"abort with an error on duplicate entities (corpora, translations, etc.)")
	return cli.Configure(cmd)
}

func run(cmd *cobra.Command, opts options, path string, stdout, stderr io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}
	defer f.Close()

	gdb, err := opts.db.Open(stderr)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	im := &corpus.XMLImporter{
		Store: db.NewStore(gdb),
		Policy: corpus.DuplicatePolicy{
			Strict: opts.errorOnDuplicates,
			Logger: log.New(stderr, "", 0),
		},
		Out: stdout,
	}
	if _, err := im.Import(cmd.Context(), f); err != nil {
		return cli.WithCode(exitCode(err), err)
	}
	return nil
}

// exitCode reports strict duplicates, unknown languages and malformed input
// as usage errors.
func exitCode(err error) int {
	switch {
	case errors.Is(err, corpus.ErrDuplicate),
		errors.Is(err, corpus.ErrNotFound),
		errors.Is(err, corpus.ErrInvalidInput):
		return cli.ExitUsage
	default:
		return cli.ExitError
	}
}

func main() {
	cli.Main(newRootCmd(os.Stdout, os.Stderr))
}
