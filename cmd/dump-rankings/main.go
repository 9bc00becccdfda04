package main

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/japaniel/appraise/pkg/cli"
	"github.com/japaniel/appraise/pkg/db"
	"github.com/japaniel/appraise/pkg/rankings"
)

type options struct {
	db         cli.DBOptions
	showHeader bool
	delimiter  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "dump-rankings [flags] [key=value ...]",
		Short: "Write stored ranking judgments as delimited rows",
		Long: "Write one row per stored ranking judgment. Filters are key=value pairs,\n" +
			"combined with AND. Keys: id, task_id, task_name, source_document,\n" +
			"source_sentence, user, duration, skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cli.AddDBFlags(cmd, &opts.db)
	cmd.Flags().BoolVarP(&opts.showHeader, "header", "H", false, "show header and exit")
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", rankings.DefaultDelimiter, "delimiter for fields (default: tab)")
	return cli.Configure(cmd)
}

func run(cmd *cobra.Command, opts options, args []string, stdout, stderr io.Writer) error {
	if opts.showHeader {
		return rankings.WriteHeader(stdout, opts.delimiter)
	}

	// Filters are validated before the store is touched.
	filters, err := rankings.ParseFilters(args)
	if err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}

	gdb, err := opts.db.Open(stderr)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	return writeReport(cmd.Context(), db.NewStore(gdb), stdout, filters, opts.delimiter)
}

// writeReport buffers the report on stdout. Rows written before a failure
// are flushed too.
func writeReport(ctx context.Context, src rankings.Source, stdout io.Writer, filters []db.RankingFilter, delim string) error {
	w := bufio.NewWriter(stdout)
	if _, err := rankings.Dump(ctx, src, w, filters, delim); err != nil {
		_ = w.Flush()
		return cli.WithCode(cli.ExitError, err)
	}
	return w.Flush()
}

func main() {
	cli.Main(newRootCmd(os.Stdout, os.Stderr))
}
