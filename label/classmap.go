package label

import (
	"github.com/RyanBlaney/sonido-labels/logging"
)

const (
	// NumClasses is the size of the class space: 12 semitones replicated
	// across OctaveRange octave registers.
	NumClasses = 96

	// OctaveRange is the number of octave registers, 0 through 7.
	OctaveRange = 8

	// DefaultOctave applies when a token carries no octave digit.
	DefaultOctave = 4

	// UnknownClassIndex is the fixed fallback class for unparseable
	// labels: C4.
	UnknownClassIndex = 48
)

// ClassIndex computes the class index of a note. The semitone is the
// fast-varying component: index = semitone + 12*octave.
func ClassIndex(n Note) int {
	return n.Semitone + 12*n.Octave
}

// NoteForClass inverts ClassIndex: semitone = index mod 12, octave =
// index div 12.
func NoteForClass(index int) Note {
	return Note{Semitone: index % 12, Octave: index / 12}
}

// ClassName renders a class index as a note name, e.g. 46 -> "A#3".
func ClassName(index int) string {
	return NoteForClass(index).Name()
}

// ChordPolicy selects which notes of a chord carry its class identity.
type ChordPolicy int

const (
	// ChordRootOnly indexes a chord by its root alone, so "C4-E4-G4"
	// shares class 48 with the bare note "C4". This is the default.
	ChordRootOnly ChordPolicy = iota

	// ChordFullMembership indexes every constituent note, the encoding
	// the multi-label training path selects when chords should light up
	// all of their pitches.
	ChordFullMembership
)

// KeyLabel is a harmonica key, a pitch class independent of octave.
type KeyLabel struct {
	Name string `json:"key"`
}

// Semitone resolves the key name to a semitone class. Unrecognized names
// resolve to semitone 0 (C) and report false.
func (k KeyLabel) Semitone() (int, bool) {
	note, err := ParseNote(k.Name)
	if err != nil {
		return 0, false
	}
	return note.Semitone, true
}

// Mapper resolves parsed musical entities and raw labels into class
// indices. Every index it returns is in [0, NumClasses).
type Mapper struct {
	chordPolicy ChordPolicy
	logger      logging.Logger
}

// NewMapper creates a mapper with the root-only chord policy.
func NewMapper() *Mapper {
	return NewMapperWithPolicy(ChordRootOnly)
}

// NewMapperWithPolicy creates a mapper with an explicit chord policy.
func NewMapperWithPolicy(policy ChordPolicy) *Mapper {
	return &Mapper{
		chordPolicy: policy,
		logger: logging.WithFields(logging.Fields{
			"component": "class_mapper",
		}),
	}
}

// NoteIndex maps a single note to its class index.
func (m *Mapper) NoteIndex(n Note) int {
	return ClassIndex(n)
}

// ChordIndices maps a chord to its class indices under the mapper's
// chord policy. Duplicate pitches collapse to one index.
func (m *Mapper) ChordIndices(c Chord) []int {
	notes := c.IdentityNotes(m.chordPolicy)
	indices := make([]int, 0, len(notes))
	seen := make(map[int]bool, len(notes))
	for _, note := range notes {
		idx := ClassIndex(note)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	return indices
}

// KeyIndices maps a key to one class per octave register, since key
// identity must be learnable regardless of the recording octave.
// Unrecognized key names activate the replicas of semitone 0.
func (m *Mapper) KeyIndices(k KeyLabel) []int {
	semitone, ok := k.Semitone()
	if !ok {
		m.logger.Warn("unrecognized key name, mapping to semitone 0", logging.Fields{
			"key": k.Name,
		})
	}

	indices := make([]int, 0, OctaveRange)
	for octave := 0; octave < OctaveRange; octave++ {
		indices = append(indices, semitone+12*octave)
	}
	return indices
}

// ResolveIndices maps a raw label to its class indices, absorbing every
// malformed token into the fixed unknown class. It never fails: data
// errors degrade, they do not propagate.
func (m *Mapper) ResolveIndices(label RawLabel) []int {
	switch label.Kind {
	case KindNote:
		note, err := ParseNote(label.Token)
		if err != nil {
			return []int{m.fallbackClass(label, err)}
		}
		return []int{ClassIndex(note)}

	case KindChord:
		chord, err := ParseChord(label.Token)
		if err != nil {
			return []int{m.fallbackClass(label, err)}
		}
		return m.ChordIndices(chord)

	case KindKey:
		return m.KeyIndices(KeyLabel{Name: label.Key})

	default:
		return []int{m.fallbackClass(label, nil)}
	}
}

// ResolveClass maps a raw label to the single class the one-hot path
// uses. Notes and chords reduce through the root note regardless of the
// chord policy; keys reduce to their bare semitone, the octave-0
// replica, since the legacy single-label path never re-expands octaves.
func (m *Mapper) ResolveClass(label RawLabel) int {
	switch label.Kind {
	case KindNote:
		note, err := ParseNote(label.Token)
		if err != nil {
			return m.fallbackClass(label, err)
		}
		return ClassIndex(note)

	case KindChord:
		chord, err := ParseChord(label.Token)
		if err != nil {
			return m.fallbackClass(label, err)
		}
		return ClassIndex(chord.Root)

	case KindKey:
		semitone, ok := KeyLabel{Name: label.Key}.Semitone()
		if !ok {
			m.logger.Warn("unrecognized key name, mapping to semitone 0", logging.Fields{
				"key": label.Key,
			})
		}
		return semitone

	default:
		return m.fallbackClass(label, nil)
	}
}

// fallbackClass logs the degradation and returns the unknown class. The
// log entry is the only trace a malformed label leaves, so it carries
// the verbatim token.
func (m *Mapper) fallbackClass(label RawLabel, err error) int {
	fields := logging.Fields{
		"label": label.String(),
		"kind":  label.Kind.String(),
		"class": UnknownClassIndex,
	}
	if err != nil {
		m.logger.Warn("unparseable label, using unknown class: "+err.Error(), fields)
	} else {
		m.logger.Debug("unknown label, using fallback class", fields)
	}
	return UnknownClassIndex
}
