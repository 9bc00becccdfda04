package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrConstraint reports an insert rejected by a UNIQUE or foreign key constraint.
var ErrConstraint = errors.New("constraint violation")

// ErrUnknownFilter is returned for a ranking filter key with no matching column.
var ErrUnknownFilter = errors.New("unknown ranking filter")

// Store is the gorm-backed data access layer. Lookups return (nil, nil) when
// no row matches.
type Store struct {
	DB *gorm.DB
}

// NewStore wraps an open gorm handle.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{DB: gdb}
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// first runs q into dest and maps "no row" to found == false.
func first(q *gorm.DB, dest any) (bool, error) {
	err := q.Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func create(ctx context.Context, gdb *gorm.DB, what string, v any) error {
	if err := gdb.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueConstraintErr(err) {
			return fmt.Errorf("create %s: %w: %v", what, ErrConstraint, err)
		}
		return fmt.Errorf("create %s: %w", what, err)
	}
	return nil
}

// FindLanguage looks a language up by its name code.
func (s *Store) FindLanguage(ctx context.Context, name string) (*Language, error) {
	var l Language
	ok, err := first(s.DB.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)), &l)
	if err != nil {
		return nil, fmt.Errorf("find language %q: %w", name, err)
	}
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// CreateLanguage inserts reference data. Only used for seeding.
func (s *Store) CreateLanguage(ctx context.Context, l *Language) error {
	return create(ctx, s.DB, "language", l)
}

// FindCorpus returns the first corpus with customID in any language.
func (s *Store) FindCorpus(ctx context.Context, customID string) (*Corpus, error) {
	var c Corpus
	ok, err := first(s.DB.WithContext(ctx).Where("custom_id = ?", customID).Order("id"), &c)
	if err != nil {
		return nil, fmt.Errorf("find corpus %q: %w", customID, err)
	}
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// FindCorpusInLanguage returns the corpus identified by (customID, languageID).
func (s *Store) FindCorpusInLanguage(ctx context.Context, customID string, languageID int64) (*Corpus, error) {
	var c Corpus
	ok, err := first(s.DB.WithContext(ctx).Where("custom_id = ? AND language_id = ?", customID, languageID), &c)
	if err != nil {
		return nil, fmt.Errorf("find corpus %q: %w", customID, err)
	}
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// CreateCorpus inserts c and sets its ID.
func (s *Store) CreateCorpus(ctx context.Context, c *Corpus) error {
	return create(ctx, s.DB, "corpus", c)
}

// CorpusDocuments returns the documents of a corpus in their defined order.
func (s *Store) CorpusDocuments(ctx context.Context, corpusID int64) ([]SourceDocument, error) {
	var docs []SourceDocument
	err := s.DB.WithContext(ctx).
		Joins("JOIN document_corpora ON document_corpora.document_id = source_documents.id").
		Where("document_corpora.corpus_id = ?", corpusID).
		Order("document_corpora.position, document_corpora.id").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list corpus %d documents: %w", corpusID, err)
	}
	return docs, nil
}

// LinkDocument places a document in a corpus at position. Linking an already
// linked pair is a no-op.
func (s *Store) LinkDocument(ctx context.Context, corpusID, documentID int64, position int) error {
	var existing DocumentCorpus
	ok, err := first(s.DB.WithContext(ctx).Where("corpus_id = ? AND document_id = ?", corpusID, documentID), &existing)
	if err != nil {
		return fmt.Errorf("find document link: %w", err)
	}
	if ok {
		return nil
	}
	return create(ctx, s.DB, "document link", &DocumentCorpus{CorpusID: corpusID, DocumentID: documentID, Position: position})
}

// FindSourceDocument returns the document identified by (customID, languageID).
func (s *Store) FindSourceDocument(ctx context.Context, customID string, languageID int64) (*SourceDocument, error) {
	var d SourceDocument
	ok, err := first(s.DB.WithContext(ctx).Where("custom_id = ? AND language_id = ?", customID, languageID), &d)
	if err != nil {
		return nil, fmt.Errorf("find document %q: %w", customID, err)
	}
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// CreateSourceDocument inserts d and sets its ID.
func (s *Store) CreateSourceDocument(ctx context.Context, d *SourceDocument) error {
	return create(ctx, s.DB, "source document", d)
}

// SaveSourceDocument writes every column of an existing document.
func (s *Store) SaveSourceDocument(ctx context.Context, d *SourceDocument) error {
	if err := s.DB.WithContext(ctx).Save(d).Error; err != nil {
		return fmt.Errorf("save source document %d: %w", d.ID, err)
	}
	return nil
}

// DocumentSentences returns a document's sentences in storage order.
func (s *Store) DocumentSentences(ctx context.Context, documentID int64) ([]SourceSentence, error) {
	var out []SourceSentence
	if err := s.DB.WithContext(ctx).Where("document_id = ?", documentID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list document %d sentences: %w", documentID, err)
	}
	return out, nil
}

// FindSentence returns the sentence with customID inside a document.
func (s *Store) FindSentence(ctx context.Context, documentID int64, customID string) (*SourceSentence, error) {
	var ss SourceSentence
	ok, err := first(s.DB.WithContext(ctx).Where("document_id = ? AND custom_id = ?", documentID, customID), &ss)
	if err != nil {
		return nil, fmt.Errorf("find sentence %q: %w", customID, err)
	}
	if !ok {
		return nil, nil
	}
	return &ss, nil
}

// CreateSentence inserts ss and sets its ID.
func (s *Store) CreateSentence(ctx context.Context, ss *SourceSentence) error {
	return create(ctx, s.DB, "source sentence", ss)
}

// FindSystem looks a translation system up by name.
func (s *Store) FindSystem(ctx context.Context, name string) (*TranslationSystem, error) {
	var ts TranslationSystem
	ok, err := first(s.DB.WithContext(ctx).Where("name = ?", name), &ts)
	if err != nil {
		return nil, fmt.Errorf("find system %q: %w", name, err)
	}
	if !ok {
		return nil, nil
	}
	return &ts, nil
}

// CreateSystem inserts ts and sets its ID.
func (s *Store) CreateSystem(ctx context.Context, ts *TranslationSystem) error {
	return create(ctx, s.DB, "translation system", ts)
}

// FindTranslatedDocument returns the translated document for a (document, system) pair.
func (s *Store) FindTranslatedDocument(ctx context.Context, sourceID, systemID int64) (*TranslatedDocument, error) {
	var td TranslatedDocument
	ok, err := first(s.DB.WithContext(ctx).Where("source_id = ? AND translation_system_id = ?", sourceID, systemID), &td)
	if err != nil {
		return nil, fmt.Errorf("find translated document: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &td, nil
}

// CreateTranslatedDocument inserts td and sets its ID.
func (s *Store) CreateTranslatedDocument(ctx context.Context, td *TranslatedDocument) error {
	return create(ctx, s.DB, "translated document", td)
}

// TranslationExists reports whether the sentence already has a translation in the translated document.
func (s *Store) TranslationExists(ctx context.Context, sentenceID, translatedDocID int64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Translation{}).
		Where("source_sentence_id = ? AND document_id = ?", sentenceID, translatedDocID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check translation: %w", err)
	}
	return n > 0, nil
}

// CreateTranslation inserts t and sets its ID.
func (s *Store) CreateTranslation(ctx context.Context, t *Translation) error {
	return create(ctx, s.DB, "translation", t)
}

// CreateOrGetUser returns the user named username, inserting it if missing.
func (s *Store) CreateOrGetUser(ctx context.Context, username string) (*User, error) {
	var u User
	ok, err := first(s.DB.WithContext(ctx).Where("username = ?", username), &u)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	if ok {
		return &u, nil
	}
	u = User{Username: username}
	if err := create(ctx, s.DB, "user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateOrGetTask returns the evaluation task with taskID, inserting it if missing.
func (s *Store) CreateOrGetTask(ctx context.Context, taskID, name string) (*EvaluationTask, error) {
	var t EvaluationTask
	ok, err := first(s.DB.WithContext(ctx).Where("task_id = ?", taskID), &t)
	if err != nil {
		return nil, fmt.Errorf("find task %q: %w", taskID, err)
	}
	if ok {
		return &t, nil
	}
	t = EvaluationTask{TaskID: taskID, TaskName: name}
	if err := create(ctx, s.DB, "evaluation task", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateItem inserts a ranking item.
func (s *Store) CreateItem(ctx context.Context, it *RankEvalItem) error {
	return create(ctx, s.DB, "rank item", it)
}

// SaveRankingResult inserts r together with its ranks, keeping their slice order.
func (s *Store) SaveRankingResult(ctx context.Context, r *RankingResult) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return create(ctx, tx, "ranking result", r)
	})
}

// RankingFilter is an exact-match condition on one ranking report column.
type RankingFilter struct {
	Key   string
	Value string
}

var rankingColumns = map[string]string{
	"id":              "ranking_results.id",
	"task_id":         "evaluation_tasks.task_id",
	"task_name":       "evaluation_tasks.task_name",
	"source_document": "source_documents.custom_id",
	"source_sentence": "source_sentences.custom_id",
	"user":            "users.username",
	"duration":        "ranking_results.duration",
	"skipped":         "ranking_results.skipped",
}

// RankingFilterKeys lists the keys accepted by RankingRows.
func RankingFilterKeys() []string {
	return []string{"id", "task_id", "task_name", "source_document", "source_sentence", "user", "duration", "skipped"}
}

// IsRankingFilterKey reports whether key can be used in a RankingFilter.
func IsRankingFilterKey(key string) bool {
	_, ok := rankingColumns[key]
	return ok
}

type rankingHead struct {
	ResultID       int64
	TaskID         string
	TaskName       string
	SourceDocument string
	SourceSentence string
	Username       string
	Duration       string
	Skipped        bool
}

type rankEntry struct {
	ResultID int64
	System   string
	Rank     int
}

// rankBatch bounds the number of bound parameters in one IN clause.
const rankBatch = 500

// RankingRows returns every ranking result matching all filters, ordered by id.
func (s *Store) RankingRows(ctx context.Context, filters []RankingFilter) ([]RankingRow, error) {
	q := s.DB.WithContext(ctx).Table("ranking_results").
		Select(`ranking_results.id AS result_id,
			evaluation_tasks.task_id AS task_id,
			evaluation_tasks.task_name AS task_name,
			source_documents.custom_id AS source_document,
			source_sentences.custom_id AS source_sentence,
			users.username AS username,
			ranking_results.duration AS duration,
			ranking_results.skipped AS skipped`).
		Joins("JOIN rank_eval_items ON rank_eval_items.id = ranking_results.item_id").
		Joins("JOIN evaluation_tasks ON evaluation_tasks.id = rank_eval_items.task_id").
		Joins("JOIN source_sentences ON source_sentences.id = rank_eval_items.source_sentence_id").
		Joins("JOIN source_documents ON source_documents.id = source_sentences.document_id").
		Joins("JOIN users ON users.id = ranking_results.user_id")

	for _, f := range filters {
		col, ok := rankingColumns[f.Key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, f.Key)
		}
		var v any = f.Value
		if f.Key == "skipped" {
			b, err := strconv.ParseBool(f.Value)
			if err != nil {
				return nil, fmt.Errorf("skipped filter %q: %w", f.Value, err)
			}
			v = b
		}
		q = q.Where(col+" = ?", v)
	}

	var heads []rankingHead
	if err := q.Order("ranking_results.id").Scan(&heads).Error; err != nil {
		return nil, fmt.Errorf("query rankings: %w", err)
	}

	rows := make([]RankingRow, len(heads))
	index := make(map[int64]int, len(heads))
	var ranked []int64
	for i, h := range heads {
		rows[i] = RankingRow{
			ResultID:       h.ResultID,
			TaskID:         h.TaskID,
			TaskName:       h.TaskName,
			SourceDocument: h.SourceDocument,
			SourceSentence: h.SourceSentence,
			Username:       h.Username,
			Duration:       h.Duration,
			Skipped:        h.Skipped,
		}
		index[h.ResultID] = i
		if !h.Skipped {
			ranked = append(ranked, h.ResultID)
		}
	}

	for start := 0; start < len(ranked); start += rankBatch {
		end := start + rankBatch
		if end > len(ranked) {
			end = len(ranked)
		}
		var entries []rankEntry
		err := s.DB.WithContext(ctx).Table("ranks").
			Select("ranks.result_id AS result_id, translation_systems.name AS system, ranks.rank AS rank").
			Joins("JOIN translations ON translations.id = ranks.translation_id").
			Joins("JOIN translated_documents ON translated_documents.id = translations.document_id").
			Joins("JOIN translation_systems ON translation_systems.id = translated_documents.translation_system_id").
			Where("ranks.result_id IN ?", ranked[start:end]).
			Order("ranks.id").
			Scan(&entries).Error
		if err != nil {
			return nil, fmt.Errorf("query ranks: %w", err)
		}
		for _, e := range entries {
			i := index[e.ResultID]
			rows[i].Ranks = append(rows[i].Ranks, SystemRank{System: e.System, Rank: e.Rank})
		}
	}
	return rows, nil
}
