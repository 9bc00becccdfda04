package rankings

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/japaniel/appraise/pkg/db"
)

type fakeSource struct {
	rows    []db.RankingRow
	filters []db.RankingFilter
	called  bool
}

func (f *fakeSource) RankingRows(_ context.Context, filters []db.RankingFilter) ([]db.RankingRow, error) {
	f.called = true
	f.filters = filters
	return f.rows, nil
}

func TestParseFilters(t *testing.T) {
	filters, err := ParseFilters([]string{"task_id=5", "user=alice", "task_id=6"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []db.RankingFilter{{Key: "task_id", Value: "6"}, {Key: "user", Value: "alice"}}
	if len(filters) != len(want) {
		t.Fatalf("expected %v, got %v", want, filters)
	}
	for i := range want {
		if filters[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, filters)
		}
	}

	empty, err := ParseFilters(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no filters, got %v, %v", empty, err)
	}

	blank, err := ParseFilters([]string{"task_name="})
	if err != nil || blank[0].Value != "" {
		t.Fatalf("empty value must be allowed, got %v, %v", blank, err)
	}
}

func TestParseFiltersRejectsMalformed(t *testing.T) {
	for _, arg := range []string{"task_id", "task_id=5=6", "=5", "nope=1", "skipped=maybe"} {
		if _, err := ParseFilters([]string{arg}); !errors.Is(err, ErrBadFilter) {
			t.Errorf("%q: expected ErrBadFilter, got %v", arg, err)
		}
	}
}

func TestFormatRow(t *testing.T) {
	ranked := db.RankingRow{
		TaskID: "5", TaskName: "wmt", SourceDocument: "r2-news", SourceSentence: "12",
		Username: "alice", Duration: "0:00:12",
		Ranks: []db.SystemRank{{System: "sysB", Rank: 1}, {System: "sysA", Rank: 2}},
	}
	if got, want := FormatRow(ranked, "\t"), "5\twmt\tr2-news\t12\talice\t0:00:12\tsysB:1\tsysA:2"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	skipped := ranked
	skipped.Skipped = true
	if got, want := FormatRow(skipped, ","), "5,wmt,r2-news,12,alice,0:00:12,__SKIPPED__"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHeader(&buf, "\t"); err != nil {
		t.Fatalf("header: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if lines[0] != "taskId\ttaskName\tsourceDocument\tsourceSentence\tuser\tduration\trankings" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	// Each tab expands to the next multiple of 8: the header is 88 columns wide.
	if lines[1] != strings.Repeat("-", 88) {
		t.Fatalf("unexpected separator of length %d", len(lines[1]))
	}

	buf.Reset()
	_ = WriteHeader(&buf, ";")
	lines = strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("separator should match header width without tabs")
	}
}

func TestDump(t *testing.T) {
	src := &fakeSource{rows: []db.RankingRow{
		{TaskID: "5", Username: "alice", Ranks: []db.SystemRank{{System: "a", Rank: 1}}},
		{TaskID: "5", Username: "bob", Skipped: true},
	}}
	var buf bytes.Buffer
	filters := []db.RankingFilter{{Key: "task_id", Value: "5"}}
	n, err := Dump(context.Background(), src, &buf, filters, "\t")
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	if len(src.filters) != 1 || src.filters[0] != filters[0] {
		t.Fatalf("filters not passed through: %v", src.filters)
	}
	want := "5\t\t\t\talice\t\ta:1\n5\t\t\t\tbob\t\t__SKIPPED__\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestDumpStopsWhenCanceled(t *testing.T) {
	src := &fakeSource{rows: []db.RankingRow{
		{TaskID: "5", Username: "alice"},
		{TaskID: "5", Username: "bob"},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	n, err := Dump(ctx, src, &buf, nil, "\t")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n != 1 || strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected exactly one row before stopping, got %d: %q", n, buf.String())
	}
}
