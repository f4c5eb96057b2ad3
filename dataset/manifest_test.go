package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-labels/label"
)

func writeDatasetFile(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
}

func TestBuilderBuildNoteTaxonomy(t *testing.T) {
	root := t.TempDir()
	writeDatasetFile(t, root, "key_C/note_C4_blow.wav")
	writeDatasetFile(t, root, "key_C/note_D4_draw.wav")
	writeDatasetFile(t, root, "key_C/session_notes.txt")
	writeDatasetFile(t, root, "key_Bb/ambient.wav")

	builder := NewBuilder()
	manifest, err := builder.Build(root, label.TaxonomyNote)
	require.NoError(t, err)

	require.Len(t, manifest.Entries, 3)
	assert.NotEmpty(t, manifest.ID)
	assert.Equal(t, label.TaxonomyNote, manifest.Taxonomy)
	assert.Equal(t, root, manifest.Root)
	assert.False(t, manifest.CreatedAt.IsZero())

	// WalkDir visits lexically, so key_Bb precedes key_C.
	assert.Equal(t, label.KindUnknown, manifest.Entries[0].Label.Kind)
	assert.Equal(t, "C4", manifest.Entries[1].Label.Token)
	assert.Equal(t, "D4", manifest.Entries[2].Label.Token)

	assert.Equal(t, []int{label.UnknownClassIndex}, manifest.Entries[0].ClassIndices)
	assert.Equal(t, []int{48}, manifest.Entries[1].ClassIndices)
	assert.Equal(t, []int{50}, manifest.Entries[2].ClassIndices)

	assert.Equal(t, 1, manifest.UnknownCount)
	assert.Equal(t, 2, manifest.ClassCounts[48])
	assert.Equal(t, 1, manifest.ClassCounts[50])
}

func TestBuilderBuildKeyTaxonomy(t *testing.T) {
	root := t.TempDir()
	writeDatasetFile(t, root, "key_C/take1.wav")
	writeDatasetFile(t, root, "key_G/take1.flac")

	builder := NewBuilder()
	manifest, err := builder.Build(root, label.TaxonomyKeyTuning)
	require.NoError(t, err)

	require.Len(t, manifest.Entries, 2)
	assert.Equal(t, "C", manifest.Entries[0].Label.Key)
	assert.Equal(t, "G", manifest.Entries[1].Label.Key)

	// Key labels mark the semitone in every octave.
	require.Len(t, manifest.Entries[0].ClassIndices, label.OctaveRange)
	assert.Equal(t, 0, manifest.Entries[0].ClassIndices[0])
	assert.Equal(t, 12, manifest.Entries[0].ClassIndices[1])
	assert.Equal(t, 7, manifest.Entries[1].ClassIndices[0])
	assert.Equal(t, 0, manifest.UnknownCount)
}

func TestBuilderRejectsUnsupportedTaxonomy(t *testing.T) {
	builder := NewBuilder()
	_, err := builder.Build(t.TempDir(), label.Taxonomy("tempo"))
	assert.Error(t, err)
}

func TestBuilderSkipsNonAudioExtensions(t *testing.T) {
	root := t.TempDir()
	writeDatasetFile(t, root, "note_C4.wav")
	writeDatasetFile(t, root, "note_C4.WAV")
	writeDatasetFile(t, root, "note_C4.mp3")
	writeDatasetFile(t, root, "note_C4.json")
	writeDatasetFile(t, root, "note_C4.csv")

	builder := NewBuilder()
	manifest, err := builder.Build(root, label.TaxonomyNote)
	require.NoError(t, err)

	// Extension matching is case insensitive.
	assert.Len(t, manifest.Entries, 3)
}

func TestManifestWriteAndLoad(t *testing.T) {
	root := t.TempDir()
	writeDatasetFile(t, root, "chord_C4-E4-G4_1.wav")
	writeDatasetFile(t, root, "chord_D4-G4_1.wav")

	builder := NewBuilder()
	manifest, err := builder.Build(root, label.TaxonomyChord)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, manifest.WriteJSON(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, manifest.ID, loaded.ID)
	assert.Equal(t, manifest.Taxonomy, loaded.Taxonomy)
	require.Len(t, loaded.Entries, 2)
	assert.Equal(t, "C4-E4-G4", loaded.Entries[0].Label.Token)
	assert.Equal(t, manifest.Entries[0].ClassIndices, loaded.Entries[0].ClassIndices)
	assert.Equal(t, manifest.ClassCounts, loaded.ClassCounts)
}

func TestManifestLabels(t *testing.T) {
	manifest := &Manifest{
		Entries: []ManifestEntry{
			{Path: "a.wav", Label: label.NewNoteToken("C4")},
			{Path: "b.wav", Label: label.NewNoteToken("D4")},
		},
	}

	labels := manifest.Labels()
	require.Len(t, labels, 2)
	assert.Equal(t, "C4", labels[0].Token)
	assert.Equal(t, "D4", labels[1].Token)
}
