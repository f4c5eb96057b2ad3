package label

import (
	"testing"

	"github.com/RyanBlaney/sonido-labels/logging"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func TestClassIndexBijection(t *testing.T) {
	seen := make(map[int]bool)
	for octave := 0; octave < OctaveRange; octave++ {
		for semitone := 0; semitone < 12; semitone++ {
			idx := ClassIndex(Note{Semitone: semitone, Octave: octave})
			if idx < 0 || idx >= NumClasses {
				t.Fatalf("index %d out of range for semitone=%d octave=%d", idx, semitone, octave)
			}
			if seen[idx] {
				t.Fatalf("index %d produced twice", idx)
			}
			seen[idx] = true

			back := NoteForClass(idx)
			if back.Semitone != semitone || back.Octave != octave {
				t.Errorf("NoteForClass(%d) = %+v, expected semitone=%d octave=%d", idx, back, semitone, octave)
			}
		}
	}
	if len(seen) != NumClasses {
		t.Errorf("covered %d indices, expected %d", len(seen), NumClasses)
	}
}

func TestResolveClass(t *testing.T) {
	mapper := NewMapper()

	tests := []struct {
		name     string
		label    RawLabel
		expected int
	}{
		{
			name:     "middle C note",
			label:    NewNoteToken("C4"),
			expected: 48,
		},
		{
			name:     "C5 is one octave up",
			label:    NewNoteToken("C5"),
			expected: 60,
		},
		{
			name:     "A sharp 3",
			label:    NewNoteToken("A#3"),
			expected: 46,
		},
		{
			name:     "C major triad reduces to its root class",
			label:    NewChordToken("C4-E4-G4"),
			expected: 48,
		},
		{
			name:     "same triad one octave up",
			label:    NewChordToken("C5-E5-G5"),
			expected: 60,
		},
		{
			name:     "D partial chord",
			label:    NewChordToken("D4-G4"),
			expected: 50,
		},
		{
			name:     "D partial chord two octaves up",
			label:    NewChordToken("D6-G6"),
			expected: 74,
		},
		{
			name:     "key reduces to bare semitone",
			label:    NewKeyLabel("D"),
			expected: 2,
		},
		{
			name:     "flat key",
			label:    NewKeyLabel("Bb"),
			expected: 10,
		},
		{
			name:     "unrecognized key maps to semitone 0",
			label:    NewKeyLabel("X"),
			expected: 0,
		},
		{
			name:     "unknown label falls back to C4",
			label:    UnknownLabel(),
			expected: UnknownClassIndex,
		},
		{
			name:     "malformed note token falls back to C4",
			label:    NewNoteToken("zzz"),
			expected: UnknownClassIndex,
		},
		{
			name:     "malformed chord token falls back to C4",
			label:    NewChordToken("x-C4"),
			expected: UnknownClassIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapper.ResolveClass(tt.label); got != tt.expected {
				t.Errorf("ResolveClass(%v) = %d, expected %d", tt.label, got, tt.expected)
			}
		})
	}
}

func TestChordAndNoteShareRootClass(t *testing.T) {
	// "C4" and "C4-E4-G4" land on the same class. Root reduction is the
	// documented indexing behavior; this asserts equality on purpose.
	mapper := NewMapper()

	noteClass := mapper.ResolveClass(NewNoteToken("C4"))
	chordClass := mapper.ResolveClass(NewChordToken("C4-E4-G4"))
	if noteClass != chordClass {
		t.Errorf("note class %d != chord class %d, root reduction broken", noteClass, chordClass)
	}
	if noteClass != 48 {
		t.Errorf("expected class 48, got %d", noteClass)
	}
}

func TestLegacyChordSemitones(t *testing.T) {
	// Named chords keep their letter's semitone through the single-class
	// path whatever octave the digit scan assigns.
	mapper := NewMapper()

	if got := mapper.ResolveClass(NewChordToken("Cmaj")) % 12; got != 0 {
		t.Errorf("Cmaj semitone = %d, expected 0", got)
	}
	if got := mapper.ResolveClass(NewChordToken("G7")) % 12; got != 7 {
		t.Errorf("G7 semitone = %d, expected 7", got)
	}
}

func TestChordIndicesFullMembership(t *testing.T) {
	mapper := NewMapperWithPolicy(ChordFullMembership)

	chord, err := ParseChord("C4-E4-G4")
	if err != nil {
		t.Fatalf("ParseChord failed: %v", err)
	}

	indices := mapper.ChordIndices(chord)
	expected := []int{48, 52, 55}
	if len(indices) != len(expected) {
		t.Fatalf("got %d indices, expected %d", len(indices), len(expected))
	}
	for i, idx := range expected {
		if indices[i] != idx {
			t.Errorf("indices[%d] = %d, expected %d", i, indices[i], idx)
		}
	}
}

func TestChordIndicesCollapseDuplicates(t *testing.T) {
	mapper := NewMapperWithPolicy(ChordFullMembership)

	chord, err := ParseChord("C4-C4-G4")
	if err != nil {
		t.Fatalf("ParseChord failed: %v", err)
	}

	indices := mapper.ChordIndices(chord)
	if len(indices) != 2 {
		t.Errorf("got %d indices, expected duplicates collapsed to 2: %v", len(indices), indices)
	}
}

func TestKeyIndices(t *testing.T) {
	mapper := NewMapper()

	tests := []struct {
		name             string
		key              string
		expectedSemitone int
	}{
		{name: "C key", key: "C", expectedSemitone: 0},
		{name: "B flat key", key: "Bb", expectedSemitone: 10},
		{name: "sharp key", key: "F#", expectedSemitone: 6},
		{name: "unrecognized key uses semitone 0", key: "nope", expectedSemitone: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indices := mapper.KeyIndices(KeyLabel{Name: tt.key})
			if len(indices) != OctaveRange {
				t.Fatalf("got %d indices, expected one per octave (%d)", len(indices), OctaveRange)
			}
			for octave, idx := range indices {
				expected := tt.expectedSemitone + 12*octave
				if idx != expected {
					t.Errorf("indices[%d] = %d, expected %d", octave, idx, expected)
				}
			}
		})
	}
}

func TestResolveIndicesNeverEmpty(t *testing.T) {
	mapper := NewMapper()

	labels := []RawLabel{
		NewNoteToken("C4"),
		NewNoteToken(""),
		NewChordToken("garbage"),
		NewKeyLabel("G"),
		UnknownLabel(),
	}
	for _, lab := range labels {
		indices := mapper.ResolveIndices(lab)
		if len(indices) == 0 {
			t.Errorf("ResolveIndices(%v) returned no indices", lab)
		}
		for _, idx := range indices {
			if idx < 0 || idx >= NumClasses {
				t.Errorf("ResolveIndices(%v) produced out-of-range index %d", lab, idx)
			}
		}
	}
}
