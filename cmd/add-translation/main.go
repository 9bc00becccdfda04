package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/japaniel/appraise/pkg/cli"
	"github.com/japaniel/appraise/pkg/corpus"
	"github.com/japaniel/appraise/pkg/db"
)

type options struct {
	db       cli.DBOptions
	language string
	corpusID string
	system   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "add-translation -l LANG -i ID -s SYSTEM FILE",
		Short: "Import one system's line-aligned translations of a stored corpus",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cli.Usagef("You have to give a file to import data from")
			}
			if len(args) > 1 {
				return cli.Usagef("Importing more than one translation at a time is not supported yet")
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
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "target language (required)")
	cmd.Flags().StringVarP(&opts.corpusID, "id", "i", "", "id of the source corpus (required)")
	cmd.Flags().StringVarP(&opts.system, "system", "s", "", "system id (required)")
	return cli.Configure(cmd)
}

func run(cmd *cobra.Command, opts options, path string, stdout, stderr io.Writer) error {
	switch {
	case opts.language == "":
		return cli.Usagef("No language given")
	case opts.corpusID == "":
		return cli.Usagef("No document id given")
	case opts.system == "":
		return cli.Usagef("No system given")
	}

	f, err := os.Open(path)
	if err != nil {
		return cli.WithCode(cli.ExitError, err)
	}
	defer f.Close()

	gdb, err := opts.db.Open(stderr)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	im := &corpus.TranslationImporter{Store: db.NewStore(gdb), Out: stdout}
	stats, err := im.Import(cmd.Context(), corpus.TranslationImport{
		CorpusID: opts.corpusID,
		Language: opts.language,
		System:   opts.system,
		Input:    f,
		Name:     path,
	})
	if err != nil {
		return cli.WithCode(cli.ExitError, err)
	}
	fmt.Fprintf(stdout, "Imported %d translations into %d documents.\n", stats.Translations, stats.Documents)
	return nil
}

func main() {
	cli.Main(newRootCmd(os.Stdout, os.Stderr))
}
