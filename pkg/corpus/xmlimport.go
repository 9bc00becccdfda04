package corpus

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/japaniel/appraise/pkg/db"
)

// CorpusPrefix is prepended to the root id of an imported XML document.
const CorpusPrefix = "r2-"

// ErrInvalidInput is returned for XML that lacks required attributes or
// places elements where they cannot be attributed to a sentence.
var ErrInvalidInput = errors.New("invalid input")

// XMLStats summarizes a finished XML import.
type XMLStats struct {
	CorpusID        string
	Sentences       int
	DocumentCreated bool
	CorpusCreated   bool
	// Systems lists every system seen, in first-seen order.
	Systems []string
}

// XMLImporter loads a source document with per-system translations from XML:
//
//	<set id="..." source-language="..." target-language="...">
//	  <seg id="1">
//	    <source>...</source>
//	    <translation system="...">...</translation>
//	  </seg>
//	</set>
//
// Element nesting below the root is not enforced; elements are handled in
// document order.
type XMLImporter struct {
	Store  Store
	Policy DuplicatePolicy
	// Out receives progress and summary lines. nil discards them.
	Out io.Writer
}

type textElement struct {
	Text string `xml:",chardata"`
}

// importRun is the state of one Import call.
type importRun struct {
	im       *XMLImporter
	corpusID string
	srcLang  *db.Language
	tgtLang  *db.Language
	document *db.SourceDocument
	resolver *SystemResolver

	segID    string
	inSeg    bool
	sentence *db.SourceSentence
	count    int
}

// Import parses r and stores its document, sentences and translations.
func (im *XMLImporter) Import(ctx context.Context, r io.Reader) (XMLStats, error) {
	var stats XMLStats

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	root, err := rootElement(dec)
	if err != nil {
		return stats, err
	}
	id, ok := attr(root, "id")
	if !ok {
		return stats, fmt.Errorf("%w: root element <%s> has no id attribute", ErrInvalidInput, root.Name.Local)
	}
	srcName, ok := attr(root, "source-language")
	if !ok {
		return stats, fmt.Errorf("%w: root element <%s> has no source-language attribute", ErrInvalidInput, root.Name.Local)
	}
	tgtName, ok := attr(root, "target-language")
	if !ok {
		return stats, fmt.Errorf("%w: root element <%s> has no target-language attribute", ErrInvalidInput, root.Name.Local)
	}

	run := &importRun{im: im, corpusID: CorpusPrefix + id}
	stats.CorpusID = run.corpusID

	if run.srcLang, err = im.language(ctx, srcName); err != nil {
		return stats, err
	}
	if run.tgtLang, err = im.language(ctx, tgtName); err != nil {
		return stats, err
	}
	im.printf("Source language: %s\n", run.srcLang.EnglishName)
	im.printf("Target language: %s\n", run.tgtLang.EnglishName)

	document, err := im.Store.FindSourceDocument(ctx, run.corpusID, run.srcLang.ID)
	if err != nil {
		return stats, err
	}
	if document != nil {
		err := im.Policy.Check(
			fmt.Sprintf("Document %q (%s) already exists in the database, aborting", run.corpusID, run.srcLang.EnglishName),
			fmt.Sprintf("Document %q (%s) already exists in the database, sentence ordering may become corrupt", run.corpusID, run.srcLang.EnglishName),
		)
		if err != nil {
			return stats, err
		}
	} else {
		document = &db.SourceDocument{CustomID: run.corpusID, LanguageID: run.srcLang.ID}
		if err := im.Store.CreateSourceDocument(ctx, document); err != nil {
			return stats, err
		}
		stats.DocumentCreated = true
	}
	run.document = document

	corpus, err := im.Store.FindCorpusInLanguage(ctx, run.corpusID, run.srcLang.ID)
	if err != nil {
		return stats, err
	}
	if corpus != nil {
		err := im.Policy.Check(
			fmt.Sprintf("Corpus %q (%s) already exists in the database, aborting", run.corpusID, run.srcLang.EnglishName),
			fmt.Sprintf("Corpus %q (%s) already exists in the database", run.corpusID, run.srcLang.EnglishName),
		)
		if err != nil {
			return stats, err
		}
	}

	run.resolver = NewSystemResolver(im.Store, document, run.tgtLang)
	err = run.walk(ctx, dec)
	stats.Sentences = run.count
	stats.Systems = run.resolver.SystemNames()
	if run.count > 0 {
		im.printf("\r")
	}
	if err != nil {
		return stats, err
	}

	if err := im.Store.SaveSourceDocument(ctx, document); err != nil {
		return stats, err
	}
	im.printf("Document %s created with %d sentences\n", run.corpusID, run.count)

	if corpus == nil {
		corpus = &db.Corpus{CustomID: run.corpusID, LanguageID: run.srcLang.ID}
		if err := im.Store.CreateCorpus(ctx, corpus); err != nil {
			return stats, err
		}
		stats.CorpusCreated = true
	}
	if stats.DocumentCreated || stats.CorpusCreated {
		if err := im.Store.LinkDocument(ctx, corpus.ID, document.ID, 0); err != nil {
			return stats, err
		}
	}
	if stats.CorpusCreated {
		im.printf("Corpus %s created\n", run.corpusID)
	}
	im.printf("Translations added for: %s\n", strings.Join(stats.Systems, " "))
	return stats, nil
}

// walk handles every element after the root in document order.
func (run *importRun) walk(ctx context.Context, dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "seg":
			id, ok := attr(start, "id")
			if !ok {
				return fmt.Errorf("%w: segment has no id attribute", ErrInvalidInput)
			}
			run.segID = id
			run.inSeg = true
			run.sentence = nil
		case "source":
			text, err := elementText(dec, start)
			if err != nil {
				return err
			}
			if err := run.source(ctx, text); err != nil {
				return err
			}
		case "translation":
			text, err := elementText(dec, start)
			if err != nil {
				return err
			}
			system, ok := attr(start, "system")
			if !ok {
				return fmt.Errorf("%w: translation in segment %q has no system attribute", ErrInvalidInput, run.segID)
			}
			if err := run.translation(ctx, system, text); err != nil {
				return err
			}
		}
	}
}

func (run *importRun) source(ctx context.Context, text string) error {
	if !run.inSeg {
		return fmt.Errorf("%w: source element outside of a segment", ErrInvalidInput)
	}
	store := run.im.Store
	sentence, err := store.FindSentence(ctx, run.document.ID, run.segID)
	if err != nil {
		return err
	}
	if sentence != nil {
		err := run.im.Policy.Check(
			fmt.Sprintf("Sentence %s already exists in the database", run.segID),
			fmt.Sprintf("Sentence %s already exists in the database, keeping the stored text", run.segID),
		)
		if err != nil {
			return err
		}
	} else {
		sentence = &db.SourceSentence{DocumentID: run.document.ID, CustomID: run.segID, Text: text}
		if err := store.CreateSentence(ctx, sentence); err != nil {
			return err
		}
	}
	run.sentence = sentence
	run.count++
	run.im.printf("\r%d sentences", run.count)
	return nil
}

func (run *importRun) translation(ctx context.Context, system, text string) error {
	if run.sentence == nil {
		return fmt.Errorf("%w: translation by %s in segment %q precedes its source", ErrInvalidInput, system, run.segID)
	}
	info, err := run.resolver.Resolve(ctx, system)
	if err != nil {
		return err
	}
	store := run.im.Store
	exists, err := store.TranslationExists(ctx, run.sentence.ID, info.Document.ID)
	if err != nil {
		return err
	}
	if exists {
		return run.im.Policy.Check(
			fmt.Sprintf("Translation of sentence %s by system %s already exists in the database", run.segID, system),
			fmt.Sprintf("Translation of sentence %s by system %s already exists in the database, skipping", run.segID, system),
		)
	}
	return store.CreateTranslation(ctx, &db.Translation{
		SourceSentenceID: run.sentence.ID,
		DocumentID:       info.Document.ID,
		Text:             text,
	})
}

func (im *XMLImporter) language(ctx context.Context, name string) (*db.Language, error) {
	l, err := im.Store.FindLanguage(ctx, name)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: language %q does not exist in the database", ErrNotFound, name)
	}
	return l, nil
}

func (im *XMLImporter) printf(format string, args ...any) {
	if im.Out != nil {
		fmt.Fprintf(im.Out, format, args...)
	}
}

func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, fmt.Errorf("%w: document has no root element", ErrInvalidInput)
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("parse xml: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// elementText consumes start's element and returns its own character data, trimmed.
func elementText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var el textElement
	if err := dec.DecodeElement(&el, &start); err != nil {
		return "", fmt.Errorf("parse <%s>: %w", start.Name.Local, err)
	}
	return strings.TrimSpace(el.Text), nil
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
