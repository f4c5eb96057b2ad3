package label

import (
	"fmt"
	"strings"
)

// Chord is an ordered sequence of notes with a designated root. The root
// is always the first note token of the chord's textual form, whatever
// the voicing: "E4-G4-C4" takes E4 as root. Class identity is derived
// from IdentityNotes, never from the note list directly.
type Chord struct {
	Notes []Note `json:"notes"`
	Root  Note   `json:"root"`
}

// ParseChord parses a chord token in either surface syntax.
//
// Hyphen-joined note lists ("C4-E4-G4", "D4-G4") are accepted when every
// part passes the note first-letter gate; each part parses via ParseNote
// and the first becomes the root. Anything else falls through to the
// legacy named-chord form ("Cmaj", "G7"), which reduces the whole token
// to a single note: the quality suffix is discarded, except that a digit
// in it reads as an octave, so "G7" lands in octave 7.
func ParseChord(token string) (Chord, error) {
	if token == "" {
		return Chord{}, fmt.Errorf("empty chord token")
	}

	if strings.Contains(token, "-") {
		parts := strings.Split(token, "-")
		if allNoteParts(parts) {
			notes := make([]Note, 0, len(parts))
			for _, part := range parts {
				note, err := ParseNote(part)
				if err != nil {
					return Chord{}, fmt.Errorf("chord part %q: %w", part, err)
				}
				notes = append(notes, note)
			}
			return Chord{Notes: notes, Root: notes[0]}, nil
		}
	}

	root, err := ParseNote(token)
	if err != nil {
		return Chord{}, fmt.Errorf("chord token %q: %w", token, err)
	}
	return Chord{Notes: []Note{root}, Root: root}, nil
}

// IdentityNotes returns the notes that define the chord's class identity
// under the given policy. This is the single switch point for the
// root-reduction behavior; callers never branch on the policy themselves.
func (c Chord) IdentityNotes(policy ChordPolicy) []Note {
	if policy == ChordFullMembership {
		return c.Notes
	}
	return []Note{c.Root}
}

// allNoteParts reports whether every hyphen-separated part starts with a
// note letter, the gate for the note-list syntax.
func allNoteParts(parts []string) bool {
	for _, part := range parts {
		if part == "" || !IsNoteLetter(part[0]) {
			return false
		}
	}
	return true
}
