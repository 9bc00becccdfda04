// Package corpus imports source documents and system translations into the
// evaluation store.
package corpus

import (
	"context"
	"errors"

	"github.com/japaniel/appraise/pkg/db"
)

var (
	// ErrNotFound is returned when a referenced language, corpus or system is missing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned for an already stored entity when duplicates are fatal.
	ErrDuplicate = errors.New("duplicate entity")
	// ErrShortInput is returned when a translation file runs out before the corpus does.
	ErrShortInput = errors.New("unexpected end of input")
)

// Store is the data access the importers need. Lookups return (nil, nil)
// when nothing matches. *db.Store implements it.
type Store interface {
	FindLanguage(ctx context.Context, name string) (*db.Language, error)

	FindCorpus(ctx context.Context, customID string) (*db.Corpus, error)
	FindCorpusInLanguage(ctx context.Context, customID string, languageID int64) (*db.Corpus, error)
	CreateCorpus(ctx context.Context, c *db.Corpus) error
	CorpusDocuments(ctx context.Context, corpusID int64) ([]db.SourceDocument, error)
	LinkDocument(ctx context.Context, corpusID, documentID int64, position int) error

	FindSourceDocument(ctx context.Context, customID string, languageID int64) (*db.SourceDocument, error)
	CreateSourceDocument(ctx context.Context, d *db.SourceDocument) error
	SaveSourceDocument(ctx context.Context, d *db.SourceDocument) error

	DocumentSentences(ctx context.Context, documentID int64) ([]db.SourceSentence, error)
	FindSentence(ctx context.Context, documentID int64, customID string) (*db.SourceSentence, error)
	CreateSentence(ctx context.Context, s *db.SourceSentence) error

	FindSystem(ctx context.Context, name string) (*db.TranslationSystem, error)
	CreateSystem(ctx context.Context, s *db.TranslationSystem) error
	FindTranslatedDocument(ctx context.Context, sourceID, systemID int64) (*db.TranslatedDocument, error)
	CreateTranslatedDocument(ctx context.Context, td *db.TranslatedDocument) error

	TranslationExists(ctx context.Context, sentenceID, translatedDocID int64) (bool, error)
	CreateTranslation(ctx context.Context, t *db.Translation) error
}

var _ Store = (*db.Store)(nil)
