package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/appraise/pkg/db"
)

// TranslationImport describes one line-aligned translation file.
type TranslationImport struct {
	CorpusID string // custom id of the source corpus
	Language string // target language name code
	System   string // name of an existing translation system
	// Input holds one translation per line, in corpus sentence order.
	Input io.Reader
	// Name identifies Input in progress output (usually the file path).
	Name string
}

// TranslationStats summarizes a finished line-aligned import.
type TranslationStats struct {
	Documents    int
	Translations int
}

// TranslationImporter stores line-aligned translations of an existing corpus.
type TranslationImporter struct {
	Store Store
	// Out receives progress lines. nil discards them.
	Out io.Writer
}

// Import reads one line per corpus sentence and stores each line, stripped of
// surrounding whitespace, as the translation of that sentence. Documents are
// visited in corpus order and sentences in storage order; each document gets
// a new translated document for the system. Lines past the last sentence are
// ignored. If Input ends early, ErrShortInput is returned after the lines
// read so far have been stored.
func (im *TranslationImporter) Import(ctx context.Context, req TranslationImport) (TranslationStats, error) {
	var stats TranslationStats

	corpus, err := im.Store.FindCorpus(ctx, req.CorpusID)
	if err != nil {
		return stats, err
	}
	if corpus == nil {
		return stats, fmt.Errorf("%w: corpus %q does not exist in the database", ErrNotFound, req.CorpusID)
	}
	language, err := im.Store.FindLanguage(ctx, req.Language)
	if err != nil {
		return stats, err
	}
	if language == nil {
		return stats, fmt.Errorf("%w: language %q not found in the database", ErrNotFound, req.Language)
	}
	system, err := im.Store.FindSystem(ctx, req.System)
	if err != nil {
		return stats, err
	}
	if system == nil {
		return stats, fmt.Errorf("%w: system %q not found in the database", ErrNotFound, req.System)
	}

	docs, err := im.Store.CorpusDocuments(ctx, corpus.ID)
	if err != nil {
		return stats, err
	}
	// Refuse before writing anything if the system already translated part of the corpus.
	for _, d := range docs {
		existing, err := im.Store.FindTranslatedDocument(ctx, d.ID, system.ID)
		if err != nil {
			return stats, err
		}
		if existing != nil {
			return stats, fmt.Errorf("%w: system %q already has translations for document %q", ErrDuplicate, system.Name, d.CustomID)
		}
	}

	im.printf("Importing translations for %q from %s (language: %s)...\n", req.CorpusID, req.Name, language.EnglishName)

	r := bufio.NewReader(req.Input)
	line := 0
	for _, d := range docs {
		td := &db.TranslatedDocument{SourceID: d.ID, TranslationSystemID: system.ID, LanguageID: language.ID}
		if err := im.Store.CreateTranslatedDocument(ctx, td); err != nil {
			return stats, err
		}
		stats.Documents++

		sentences, err := im.Store.DocumentSentences(ctx, d.ID)
		if err != nil {
			return stats, err
		}
		for _, s := range sentences {
			text, err := readLine(r)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return stats, fmt.Errorf("%w: %s has %d lines, sentence %q of document %q has none",
						ErrShortInput, req.Name, line, s.CustomID, d.CustomID)
				}
				return stats, fmt.Errorf("read %s: %w", req.Name, err)
			}
			line++
			t := &db.Translation{SourceSentenceID: s.ID, DocumentID: td.ID, Text: text}
			if err := im.Store.CreateTranslation(ctx, t); err != nil {
				return stats, err
			}
			stats.Translations++
		}
	}
	return stats, nil
}

// readLine returns the next line without surrounding whitespace. A final
// line without a trailing newline is still a line; io.EOF means no line.
func readLine(r *bufio.Reader) (string, error) {
	s, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimSpace(s), nil
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (im *TranslationImporter) printf(format string, args ...any) {
	if im.Out != nil {
		fmt.Fprintf(im.Out, format, args...)
	}
}
