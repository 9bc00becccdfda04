package db

// migrationsSQL is the schema applied by InitDB. Statements are separated by
// ";" and must not contain semicolons themselves.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS languages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	english_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS source_documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	custom_id TEXT NOT NULL,
	language_id INTEGER NOT NULL REFERENCES languages(id),
	UNIQUE(custom_id, language_id)
);

CREATE TABLE IF NOT EXISTS corpora (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	custom_id TEXT NOT NULL,
	language_id INTEGER NOT NULL REFERENCES languages(id),
	UNIQUE(custom_id, language_id)
);

CREATE TABLE IF NOT EXISTS document_corpora (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES source_documents(id),
	corpus_id INTEGER NOT NULL REFERENCES corpora(id),
	position INTEGER NOT NULL DEFAULT 0,
	UNIQUE(document_id, corpus_id)
);

CREATE TABLE IF NOT EXISTS source_sentences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES source_documents(id),
	custom_id TEXT NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	UNIQUE(document_id, custom_id)
);

CREATE TABLE IF NOT EXISTS translation_systems (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS translated_documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id INTEGER NOT NULL REFERENCES source_documents(id),
	translation_system_id INTEGER NOT NULL REFERENCES translation_systems(id),
	language_id INTEGER NOT NULL REFERENCES languages(id),
	UNIQUE(source_id, translation_system_id)
);

CREATE TABLE IF NOT EXISTS translations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES translated_documents(id),
	source_sentence_id INTEGER NOT NULL REFERENCES source_sentences(id),
	text TEXT NOT NULL DEFAULT '',
	UNIQUE(document_id, source_sentence_id)
);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS evaluation_tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id TEXT NOT NULL UNIQUE,
	task_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS rank_eval_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL REFERENCES evaluation_tasks(id),
	source_sentence_id INTEGER NOT NULL REFERENCES source_sentences(id)
);

CREATE TABLE IF NOT EXISTS ranking_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL REFERENCES rank_eval_items(id),
	user_id INTEGER NOT NULL REFERENCES users(id),
	duration TEXT NOT NULL DEFAULT '',
	skipped BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ranks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	result_id INTEGER NOT NULL REFERENCES ranking_results(id),
	translation_id INTEGER NOT NULL REFERENCES translations(id),
	rank INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ranks_result ON ranks(result_id);
CREATE INDEX IF NOT EXISTS idx_source_sentences_document ON source_sentences(document_id);
CREATE INDEX IF NOT EXISTS idx_document_corpora_corpus ON document_corpora(corpus_id, position)
`
