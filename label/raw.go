package label

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnknownToken is the sentinel token for labels that match no syntax.
const UnknownToken = "unknown"

// Taxonomy selects which labeling convention applies to a dataset.
type Taxonomy string

const (
	TaxonomyNote      Taxonomy = "note"
	TaxonomyChord     Taxonomy = "chord"
	TaxonomyKeyTuning Taxonomy = "key_tuning"
)

// ParseTaxonomy validates a taxonomy name. An unrecognized name is a
// caller bug, not dirty data, so it comes back as an error instead of
// degrading to a fallback.
func ParseTaxonomy(s string) (Taxonomy, error) {
	switch Taxonomy(s) {
	case TaxonomyNote, TaxonomyChord, TaxonomyKeyTuning:
		return Taxonomy(s), nil
	}
	return "", fmt.Errorf("unsupported taxonomy %q (want note, chord or key_tuning)", s)
}

// LabelKind discriminates the shapes a raw label can take.
type LabelKind int

const (
	KindUnknown LabelKind = iota
	KindNote
	KindChord
	KindKey
)

func (k LabelKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindChord:
		return "chord"
	case KindKey:
		return "key"
	default:
		return "unknown"
	}
}

// RawLabel is a label as it leaves filename extraction: a verbatim token
// plus the kind the extractor or token classifier assigned to it.
// Consumers switch exhaustively on Kind; there is no other shape.
type RawLabel struct {
	Kind  LabelKind
	Token string // note or chord token, verbatim from the filename
	Key   string // key name, only for KindKey
}

// NewNoteToken wraps a verbatim note token.
func NewNoteToken(token string) RawLabel {
	return RawLabel{Kind: KindNote, Token: token}
}

// NewChordToken wraps a verbatim chord token.
func NewChordToken(token string) RawLabel {
	return RawLabel{Kind: KindChord, Token: token}
}

// NewKeyLabel wraps a harmonica key name.
func NewKeyLabel(name string) RawLabel {
	return RawLabel{Kind: KindKey, Key: name}
}

// UnknownLabel is the fallback for anything that matched no syntax.
func UnknownLabel() RawLabel {
	return RawLabel{Kind: KindUnknown}
}

func (l RawLabel) String() string {
	switch l.Kind {
	case KindNote, KindChord:
		return l.Token
	case KindKey:
		return "key:" + l.Key
	default:
		return UnknownToken
	}
}

// MarshalJSON writes the label in artifact form: note and chord labels as
// their bare token, key labels as {"key": name}, unknown as "unknown".
func (l RawLabel) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case KindNote, KindChord:
		return json.Marshal(l.Token)
	case KindKey:
		return json.Marshal(map[string]string{"key": l.Key})
	default:
		return json.Marshal(UnknownToken)
	}
}

// UnmarshalJSON accepts the artifact form: bare strings run through the
// token strategy chain, objects with a "key" member become key labels.
func (l *RawLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = ClassifyToken(s)
		return nil
	}

	var obj struct {
		Key *string `json:"key"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Key != nil {
		*l = NewKeyLabel(*obj.Key)
		return nil
	}

	return fmt.Errorf("label must be a string or an object with a %q member", "key")
}

// tokenStrategy tries one surface syntax against a bare token.
type tokenStrategy func(token string) (RawLabel, bool)

// tokenStrategies is the ordered fallback chain for bare tokens: the
// hyphen-joined note list first, then anything starting with a note
// letter. First match wins; exhaustion yields the unknown label.
var tokenStrategies = []tokenStrategy{matchChordToken, matchNoteToken}

// ClassifyToken assigns a kind to a bare label token. It never fails;
// unmatched tokens come back as the unknown label for the mapper to
// absorb.
func ClassifyToken(token string) RawLabel {
	for _, strategy := range tokenStrategies {
		if label, ok := strategy(token); ok {
			return label
		}
	}
	return UnknownLabel()
}

func matchChordToken(token string) (RawLabel, bool) {
	if !strings.Contains(token, "-") {
		return RawLabel{}, false
	}
	if !allNoteParts(strings.Split(token, "-")) {
		return RawLabel{}, false
	}
	return NewChordToken(token), true
}

func matchNoteToken(token string) (RawLabel, bool) {
	if token == "" || !IsNoteLetter(token[0]) {
		return RawLabel{}, false
	}
	return NewNoteToken(token), true
}
