package label

import (
	"fmt"
)

// semitoneNames lists the canonical pitch class names in semitone order.
// Flat spellings (Db, Eb, ...) are accepted on input and normalized to
// these sharp names on output.
var semitoneNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// baseSemitones maps a natural note letter to its semitone before any
// accidental is applied. The diatonic pattern skips a step everywhere
// except E-F and B-C.
var baseSemitones = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// Note is a single pitch: a semitone class 0-11 and an octave register
// 0 through OctaveRange-1.
type Note struct {
	Semitone int `json:"semitone"`
	Octave   int `json:"octave"`
}

// Name renders the note as "{pitch class}{octave}", e.g. "C#5".
func (n Note) Name() string {
	return fmt.Sprintf("%s%d", SemitoneName(n.Semitone), n.Octave)
}

// SemitoneName returns the canonical name of a semitone class. Values
// outside 0-11 wrap mod 12.
func SemitoneName(semitone int) string {
	return semitoneNames[((semitone%12)+12)%12]
}

// IsNoteLetter reports whether c is an uppercase natural note letter A-G.
func IsNoteLetter(c byte) bool {
	_, ok := baseSemitones[c]
	return ok
}

// ParseNote parses a note token such as "C4", "A#3" or "Eb5".
//
// The first character must be an uppercase letter A-G; anything else is
// an error and the caller decides how to degrade. After the letter, the
// first '#' raises the semitone and the first 'b' lowers it, mod 12, at
// most one accidental honored. The first decimal digit after the letter
// becomes the octave, clamped into [0, OctaveRange-1]; tokens without a
// digit default to octave DefaultOctave, so "Cmaj" parses as C in
// octave 4. Once the first-letter gate passes, parsing cannot fail.
func ParseNote(token string) (Note, error) {
	if token == "" {
		return Note{}, fmt.Errorf("empty note token")
	}

	base, ok := baseSemitones[token[0]]
	if !ok {
		return Note{}, fmt.Errorf("note token %q does not start with A-G", token)
	}

	semitone := base
	for i := 1; i < len(token); i++ {
		if token[i] == '#' {
			semitone = (semitone + 1) % 12
			break
		}
		if token[i] == 'b' {
			semitone = (semitone + 11) % 12
			break
		}
	}

	// The octave scan is independent of the accidental scan: the first
	// digit anywhere after the letter wins, single character only.
	octave := DefaultOctave
	for i := 1; i < len(token); i++ {
		if token[i] >= '0' && token[i] <= '9' {
			octave = int(token[i] - '0')
			break
		}
	}

	return Note{Semitone: semitone, Octave: clampOctave(octave)}, nil
}

// clampOctave forces an octave into the supported register range.
func clampOctave(octave int) int {
	if octave < 0 {
		return 0
	}
	if octave > OctaveRange-1 {
		return OctaveRange - 1
	}
	return octave
}
