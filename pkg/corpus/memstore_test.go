package corpus

import (
	"context"
	"sort"

	"github.com/japaniel/appraise/pkg/db"
)

// memStore is an in-memory Store. Slices keep insertion order, which stands
// in for the storage order of the real store.
type memStore struct {
	nextID int64

	languages    []db.Language
	corpora      []db.Corpus
	links        []db.DocumentCorpus
	documents    []db.SourceDocument
	sentences    []db.SourceSentence
	systems      []db.TranslationSystem
	translated   []db.TranslatedDocument
	translations []db.Translation

	// counts of store calls by name
	calls map[string]int
}

func newMemStore(languages ...db.Language) *memStore {
	m := &memStore{calls: make(map[string]int)}
	for _, l := range languages {
		l.ID = m.id()
		m.languages = append(m.languages, l)
	}
	return m
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) FindLanguage(_ context.Context, name string) (*db.Language, error) {
	m.calls["FindLanguage"]++
	for _, l := range m.languages {
		if l.Name == name {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindCorpus(_ context.Context, customID string) (*db.Corpus, error) {
	m.calls["FindCorpus"]++
	for _, c := range m.corpora {
		if c.CustomID == customID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindCorpusInLanguage(_ context.Context, customID string, languageID int64) (*db.Corpus, error) {
	m.calls["FindCorpusInLanguage"]++
	for _, c := range m.corpora {
		if c.CustomID == customID && c.LanguageID == languageID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateCorpus(_ context.Context, c *db.Corpus) error {
	m.calls["CreateCorpus"]++
	c.ID = m.id()
	m.corpora = append(m.corpora, *c)
	return nil
}

func (m *memStore) CorpusDocuments(_ context.Context, corpusID int64) ([]db.SourceDocument, error) {
	m.calls["CorpusDocuments"]++
	var links []db.DocumentCorpus
	for _, l := range m.links {
		if l.CorpusID == corpusID {
			links = append(links, l)
		}
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Position < links[j].Position })
	var out []db.SourceDocument
	for _, l := range links {
		for _, d := range m.documents {
			if d.ID == l.DocumentID {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (m *memStore) LinkDocument(_ context.Context, corpusID, documentID int64, position int) error {
	m.calls["LinkDocument"]++
	for _, l := range m.links {
		if l.CorpusID == corpusID && l.DocumentID == documentID {
			return nil
		}
	}
	m.links = append(m.links, db.DocumentCorpus{ID: m.id(), CorpusID: corpusID, DocumentID: documentID, Position: position})
	return nil
}

func (m *memStore) FindSourceDocument(_ context.Context, customID string, languageID int64) (*db.SourceDocument, error) {
	m.calls["FindSourceDocument"]++
	for _, d := range m.documents {
		if d.CustomID == customID && d.LanguageID == languageID {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateSourceDocument(_ context.Context, d *db.SourceDocument) error {
	m.calls["CreateSourceDocument"]++
	d.ID = m.id()
	m.documents = append(m.documents, *d)
	return nil
}

func (m *memStore) SaveSourceDocument(_ context.Context, d *db.SourceDocument) error {
	m.calls["SaveSourceDocument"]++
	for i := range m.documents {
		if m.documents[i].ID == d.ID {
			m.documents[i] = *d
		}
	}
	return nil
}

func (m *memStore) DocumentSentences(_ context.Context, documentID int64) ([]db.SourceSentence, error) {
	m.calls["DocumentSentences"]++
	var out []db.SourceSentence
	for _, s := range m.sentences {
		if s.DocumentID == documentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) FindSentence(_ context.Context, documentID int64, customID string) (*db.SourceSentence, error) {
	m.calls["FindSentence"]++
	for _, s := range m.sentences {
		if s.DocumentID == documentID && s.CustomID == customID {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateSentence(_ context.Context, s *db.SourceSentence) error {
	m.calls["CreateSentence"]++
	s.ID = m.id()
	m.sentences = append(m.sentences, *s)
	return nil
}

func (m *memStore) FindSystem(_ context.Context, name string) (*db.TranslationSystem, error) {
	m.calls["FindSystem"]++
	for _, s := range m.systems {
		if s.Name == name {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateSystem(_ context.Context, s *db.TranslationSystem) error {
	m.calls["CreateSystem"]++
	s.ID = m.id()
	m.systems = append(m.systems, *s)
	return nil
}

func (m *memStore) FindTranslatedDocument(_ context.Context, sourceID, systemID int64) (*db.TranslatedDocument, error) {
	m.calls["FindTranslatedDocument"]++
	for _, td := range m.translated {
		if td.SourceID == sourceID && td.TranslationSystemID == systemID {
			td := td
			return &td, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateTranslatedDocument(_ context.Context, td *db.TranslatedDocument) error {
	m.calls["CreateTranslatedDocument"]++
	td.ID = m.id()
	m.translated = append(m.translated, *td)
	return nil
}

func (m *memStore) TranslationExists(_ context.Context, sentenceID, translatedDocID int64) (bool, error) {
	m.calls["TranslationExists"]++
	for _, t := range m.translations {
		if t.SourceSentenceID == sentenceID && t.DocumentID == translatedDocID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateTranslation(_ context.Context, t *db.Translation) error {
	m.calls["CreateTranslation"]++
	t.ID = m.id()
	m.translations = append(m.translations, *t)
	return nil
}

// addCorpus stores a corpus whose documents hold the given sentence ids, in order.
func (m *memStore) addCorpus(customID string, lang db.Language, docs map[string][]string, order []string) db.Corpus {
	c := db.Corpus{ID: m.id(), CustomID: customID, LanguageID: lang.ID}
	m.corpora = append(m.corpora, c)
	for pos, name := range order {
		d := db.SourceDocument{ID: m.id(), CustomID: name, LanguageID: lang.ID}
		m.documents = append(m.documents, d)
		m.links = append(m.links, db.DocumentCorpus{ID: m.id(), CorpusID: c.ID, DocumentID: d.ID, Position: pos})
		for _, sid := range docs[name] {
			m.sentences = append(m.sentences, db.SourceSentence{ID: m.id(), DocumentID: d.ID, CustomID: sid, Text: name + "/" + sid})
		}
	}
	return c
}

var _ Store = (*memStore)(nil)
