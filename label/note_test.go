package label

import (
	"testing"
)

func TestParseNote(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		expected    Note
		expectError bool
	}{
		{
			name:     "natural with octave",
			token:    "C4",
			expected: Note{Semitone: 0, Octave: 4},
		},
		{
			name:     "sharp with octave",
			token:    "A#3",
			expected: Note{Semitone: 10, Octave: 3},
		},
		{
			name:     "flat aliases to lower sharp",
			token:    "Eb5",
			expected: Note{Semitone: 3, Octave: 5},
		},
		{
			name:     "D flat",
			token:    "Db4",
			expected: Note{Semitone: 1, Octave: 4},
		},
		{
			name:     "G flat",
			token:    "Gb2",
			expected: Note{Semitone: 6, Octave: 2},
		},
		{
			name:     "B flat octave zero",
			token:    "Bb0",
			expected: Note{Semitone: 10, Octave: 0},
		},
		{
			name:     "C flat wraps to B",
			token:    "Cb3",
			expected: Note{Semitone: 11, Octave: 3},
		},
		{
			name:     "B sharp wraps to C",
			token:    "B#2",
			expected: Note{Semitone: 0, Octave: 2},
		},
		{
			name:     "missing octave defaults to 4",
			token:    "F",
			expected: Note{Semitone: 5, Octave: 4},
		},
		{
			name:     "octave above range clamps to 7",
			token:    "C9",
			expected: Note{Semitone: 0, Octave: 7},
		},
		{
			name:     "quality suffix is ignored",
			token:    "Cmaj",
			expected: Note{Semitone: 0, Octave: 4},
		},
		{
			name:     "digit in suffix reads as octave",
			token:    "G7",
			expected: Note{Semitone: 7, Octave: 7},
		},
		{
			name:     "first accidental wins",
			token:    "C#b4",
			expected: Note{Semitone: 1, Octave: 4},
		},
		{
			name:     "first digit wins",
			token:    "D35",
			expected: Note{Semitone: 2, Octave: 3},
		},
		{
			name:        "empty token",
			token:       "",
			expectError: true,
		},
		{
			name:        "non-letter lead",
			token:       "4C",
			expectError: true,
		},
		{
			name:        "lowercase letter rejected",
			token:       "c4",
			expectError: true,
		},
		{
			name:        "letter outside A-G",
			token:       "H3",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := ParseNote(tt.token)

			if tt.expectError {
				if err == nil {
					t.Errorf("ParseNote(%q) succeeded, expected error", tt.token)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseNote(%q) failed: %v", tt.token, err)
			}
			if note != tt.expected {
				t.Errorf("ParseNote(%q) = %+v, expected %+v", tt.token, note, tt.expected)
			}
		})
	}
}

func TestNoteNameRoundTrip(t *testing.T) {
	// Every class decodes to a name that parses back to the same class.
	for index := 0; index < NumClasses; index++ {
		name := ClassName(index)
		note, err := ParseNote(name)
		if err != nil {
			t.Fatalf("ParseNote(%q) failed: %v", name, err)
		}
		if got := ClassIndex(note); got != index {
			t.Errorf("class %d -> %q -> class %d, round trip broken", index, name, got)
		}
	}
}

func TestSemitoneName(t *testing.T) {
	if got := SemitoneName(10); got != "A#" {
		t.Errorf("SemitoneName(10) = %q, expected A#", got)
	}
	if got := SemitoneName(12); got != "C" {
		t.Errorf("SemitoneName(12) = %q, expected C (wraps mod 12)", got)
	}
	if got := SemitoneName(-1); got != "B" {
		t.Errorf("SemitoneName(-1) = %q, expected B (wraps mod 12)", got)
	}
}
