package corpus

import (
	"context"

	"github.com/japaniel/appraise/pkg/db"
)

// SystemInfo is the resolved system and its translated document for the
// source document being imported.
type SystemInfo struct {
	System   *db.TranslationSystem
	Document *db.TranslatedDocument
}

// SystemResolver maps system names to SystemInfo for one source document and
// target language, creating missing rows on first use. Results are cached for
// the lifetime of the resolver.
type SystemResolver struct {
	store    Store
	source   *db.SourceDocument
	language *db.Language

	cache map[string]SystemInfo
	order []string
}

// NewSystemResolver creates a resolver for translations of source into language.
func NewSystemResolver(store Store, source *db.SourceDocument, language *db.Language) *SystemResolver {
	return &SystemResolver{
		store:    store,
		source:   source,
		language: language,
		cache:    make(map[string]SystemInfo),
	}
}

// Resolve returns the SystemInfo for name. Store errors are returned as is
// and nothing is cached for name in that case.
func (r *SystemResolver) Resolve(ctx context.Context, name string) (SystemInfo, error) {
	if info, ok := r.cache[name]; ok {
		return info, nil
	}

	sys, err := r.store.FindSystem(ctx, name)
	if err != nil {
		return SystemInfo{}, err
	}
	if sys == nil {
		sys = &db.TranslationSystem{Name: name}
		if err := r.store.CreateSystem(ctx, sys); err != nil {
			return SystemInfo{}, err
		}
	}

	doc, err := r.store.FindTranslatedDocument(ctx, r.source.ID, sys.ID)
	if err != nil {
		return SystemInfo{}, err
	}
	if doc == nil {
		doc = &db.TranslatedDocument{
			SourceID:            r.source.ID,
			TranslationSystemID: sys.ID,
			LanguageID:          r.language.ID,
		}
		if err := r.store.CreateTranslatedDocument(ctx, doc); err != nil {
			return SystemInfo{}, err
		}
	}

	info := SystemInfo{System: sys, Document: doc}
	r.cache[name] = info
	r.order = append(r.order, name)
	return info, nil
}

// SystemNames returns every resolved name in first-seen order.
func (r *SystemResolver) SystemNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
