package db

// Tables are created by migrationsSQL, never by gorm. Tags only carry what
// changes query behavior: primary keys, insert defaults and associations.

// Language is reference data identified by its name code (e.g. "deu").
type Language struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	Name        string
	EnglishName string `gorm:"default:''"`
}

func (Language) TableName() string { return "languages" }

// SourceDocument is an original-language document, unique per (CustomID, LanguageID).
type SourceDocument struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	CustomID   string
	LanguageID int64
}

func (SourceDocument) TableName() string { return "source_documents" }

// Corpus groups source documents in an ordered sequence.
type Corpus struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	CustomID   string
	LanguageID int64
}

func (Corpus) TableName() string { return "corpora" }

// DocumentCorpus places a document at Position within a corpus.
type DocumentCorpus struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	DocumentID int64
	CorpusID   int64
	Position   int `gorm:"default:0"`
}

func (DocumentCorpus) TableName() string { return "document_corpora" }

// SourceSentence belongs to exactly one document; CustomID is unique within it.
type SourceSentence struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	DocumentID int64
	CustomID   string
	Text       string `gorm:"default:''"`
}

func (SourceSentence) TableName() string { return "source_sentences" }

// TranslationSystem is an MT engine or human translator.
type TranslationSystem struct {
	ID   int64 `gorm:"primaryKey;autoIncrement"`
	Name string
}

func (TranslationSystem) TableName() string { return "translation_systems" }

// TranslatedDocument is one system's output for one source document.
type TranslatedDocument struct {
	ID                  int64 `gorm:"primaryKey;autoIncrement"`
	SourceID            int64
	TranslationSystemID int64
	LanguageID          int64
}

func (TranslatedDocument) TableName() string { return "translated_documents" }

// Translation is the translated text of one source sentence.
type Translation struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	DocumentID       int64
	SourceSentenceID int64
	Text             string `gorm:"default:''"`
}

func (Translation) TableName() string { return "translations" }

// User is an evaluator.
type User struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	Username string
}

func (User) TableName() string { return "users" }

// EvaluationTask groups ranking items. TaskID is the external task identifier.
type EvaluationTask struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	TaskID   string
	TaskName string `gorm:"default:''"`
}

func (EvaluationTask) TableName() string { return "evaluation_tasks" }

// RankEvalItem asks evaluators to rank translations of one source sentence.
type RankEvalItem struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	TaskID           int64
	SourceSentenceID int64
}

func (RankEvalItem) TableName() string { return "rank_eval_items" }

// RankingResult is one evaluator's judgment on an item. Ranks are ignored when Skipped.
type RankingResult struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	ItemID   int64
	UserID   int64
	Duration string `gorm:"default:''"`
	Skipped  bool   `gorm:"default:false"`
	Ranks    []Rank `gorm:"foreignKey:ResultID"`
}

func (RankingResult) TableName() string { return "ranking_results" }

// Rank assigns a rank to one translation within a RankingResult.
type Rank struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	ResultID      int64
	TranslationID int64
	Rank          int
}

func (Rank) TableName() string { return "ranks" }

// RankingRow is a RankingResult flattened with everything the ranking report prints.
type RankingRow struct {
	ResultID       int64
	TaskID         string
	TaskName       string
	SourceDocument string
	SourceSentence string
	Username       string
	Duration       string
	Skipped        bool
	Ranks          []SystemRank
}

// SystemRank is a rank attributed to the system that produced the ranked translation.
type SystemRank struct {
	System string
	Rank   int
}
