package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

// Extractor derives raw labels from dataset file paths. Extraction is
// total over data: inconsistent naming degrades to the unknown label
// with a log entry, never an error. Only an unsupported taxonomy, a
// caller bug, comes back as an error.
type Extractor struct {
	logger logging.Logger
}

// NewExtractor creates a filename label extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		logger: logging.WithFields(logging.Fields{
			"component": "label_extractor",
		}),
	}
}

// Extract derives the raw label for a file path under the given
// taxonomy.
//
// note: the base name must be underscore-delimited with a leading
// literal "note" segment; the first later segment that is at least two
// characters and starts with a note letter is returned verbatim,
// extension stripped. That segment still has to survive ParseNote
// downstream; no accidental or octave parsing happens here.
//
// chord: the base name must start with "chord_"; the text up to the
// next underscore or the extension is returned verbatim. It may be a
// hyphen-joined note list or a legacy chord name.
//
// key_tuning: the parent directory is checked for a "key_" prefix, then
// the grandparent; the suffix after the prefix is the key name.
func (e *Extractor) Extract(path string, taxonomy label.Taxonomy) (label.RawLabel, error) {
	switch taxonomy {
	case label.TaxonomyNote:
		return e.extractNote(path), nil
	case label.TaxonomyChord:
		return e.extractChord(path), nil
	case label.TaxonomyKeyTuning:
		return e.extractKey(path), nil
	default:
		return label.RawLabel{}, fmt.Errorf("unsupported taxonomy %q (want note, chord or key_tuning)", taxonomy)
	}
}

func (e *Extractor) extractNote(path string) label.RawLabel {
	base := filepath.Base(path)
	parts := strings.Split(base, "_")
	if len(parts) < 2 || parts[0] != "note" {
		e.logger.Warn("file name does not follow the note convention", logging.Fields{
			"file": base,
		})
		return label.UnknownLabel()
	}

	for _, part := range parts[1:] {
		part = strings.TrimSuffix(part, filepath.Ext(part))
		if len(part) >= 2 && label.IsNoteLetter(part[0]) {
			return label.NewNoteToken(part)
		}
	}

	e.logger.Warn("no note token found in file name", logging.Fields{
		"file": base,
	})
	return label.UnknownLabel()
}

func (e *Extractor) extractChord(path string) label.RawLabel {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "chord_") {
		e.logger.Warn("file name does not follow the chord convention", logging.Fields{
			"file": base,
		})
		return label.UnknownLabel()
	}

	token := strings.TrimPrefix(base, "chord_")
	if i := strings.IndexByte(token, '_'); i >= 0 {
		token = token[:i]
	}
	token = strings.TrimSuffix(token, filepath.Ext(token))
	if token == "" {
		e.logger.Warn("empty chord token in file name", logging.Fields{
			"file": base,
		})
		return label.UnknownLabel()
	}
	return label.NewChordToken(token)
}

func (e *Extractor) extractKey(path string) label.RawLabel {
	parent := filepath.Base(filepath.Dir(path))
	grandparent := filepath.Base(filepath.Dir(filepath.Dir(path)))

	for _, dir := range []string{parent, grandparent} {
		if strings.HasPrefix(dir, "key_") {
			return label.NewKeyLabel(strings.TrimPrefix(dir, "key_"))
		}
	}

	e.logger.Warn("no key_ directory above file", logging.Fields{
		"file": filepath.Base(path),
	})
	return label.NewKeyLabel(label.UnknownToken)
}
