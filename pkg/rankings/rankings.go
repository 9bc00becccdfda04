// Package rankings renders stored ranking judgments as a delimited report.
package rankings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/appraise/pkg/db"
)

// SkippedMarker replaces the rank tokens of a skipped judgment.
const SkippedMarker = "__SKIPPED__"

// DefaultDelimiter separates report fields unless overridden.
const DefaultDelimiter = "\t"

// Columns are the report's field names, in output order.
var Columns = []string{
	"taskId",
	"taskName",
	"sourceDocument",
	"sourceSentence",
	"user",
	"duration",
	"rankings",
}

// ErrBadFilter is returned for a filter argument that is not a usable key=value pair.
var ErrBadFilter = errors.New("bad filter")

// Source yields ranking rows matching every filter. *db.Store implements it.
type Source interface {
	RankingRows(ctx context.Context, filters []db.RankingFilter) ([]db.RankingRow, error)
}

var _ Source = (*db.Store)(nil)

// ParseFilters turns key=value arguments into filters. A repeated key keeps
// its last value, at the position of its first occurrence.
func ParseFilters(args []string) ([]db.RankingFilter, error) {
	var out []db.RankingFilter
	pos := make(map[string]int)
	for _, a := range args {
		parts := strings.Split(a, "=")
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q is not of the form key=value", ErrBadFilter, a)
		}
		key, value := parts[0], parts[1]
		if !db.IsRankingFilterKey(key) {
			return nil, fmt.Errorf("%w: unknown key %q (known: %s)", ErrBadFilter, key, strings.Join(db.RankingFilterKeys(), ", "))
		}
		if key == "skipped" {
			if _, err := strconv.ParseBool(value); err != nil {
				return nil, fmt.Errorf("%w: skipped=%q is not a boolean", ErrBadFilter, value)
			}
		}
		if i, ok := pos[key]; ok {
			out[i].Value = value
			continue
		}
		pos[key] = len(out)
		out = append(out, db.RankingFilter{Key: key, Value: value})
	}
	return out, nil
}

// WriteHeader writes the column names joined by delim and an underline of
// dashes as wide as the header with tabs expanded.
func WriteHeader(w io.Writer, delim string) error {
	header := strings.Join(Columns, delim)
	_, err := fmt.Fprintf(w, "%s\n%s\n", header, strings.Repeat("-", utf8.RuneCountInString(expandTabs(header, 8))))
	return err
}

// FormatRow renders one judgment as delimited fields.
func FormatRow(r db.RankingRow, delim string) string {
	fields := []string{
		r.TaskID,
		r.TaskName,
		r.SourceDocument,
		r.SourceSentence,
		r.Username,
		r.Duration,
	}
	if r.Skipped {
		fields = append(fields, SkippedMarker)
	} else {
		for _, rank := range r.Ranks {
			fields = append(fields, rank.System+":"+strconv.Itoa(rank.Rank))
		}
	}
	return strings.Join(fields, delim)
}

// Dump writes one line per judgment matching filters and returns the count.
// It stops after the current line once ctx is done.
func Dump(ctx context.Context, src Source, w io.Writer, filters []db.RankingFilter, delim string) (int, error) {
	rows, err := src.RankingRows(ctx, filters)
	if err != nil {
		return 0, err
	}
	for i, r := range rows {
		if _, err := io.WriteString(w, FormatRow(r, delim)+"\n"); err != nil {
			return i, err
		}
		if err := ctx.Err(); err != nil {
			return i + 1, err
		}
	}
	return len(rows), nil
}

// expandTabs replaces each tab with spaces up to the next multiple of size.
func expandTabs(s string, size int) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := size - col%size
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
