package dataset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
)

// defaultAudioExtensions matches the file types the preparation stage
// emits.
var defaultAudioExtensions = []string{".wav", ".mp3", ".flac", ".ogg"}

// ManifestEntry records one dataset file with its resolved label.
type ManifestEntry struct {
	Path         string         `json:"path"`
	Label        label.RawLabel `json:"label"`
	ClassIndices []int          `json:"class_indices"`
}

// Manifest is the inventory one taxonomy pass over a dataset tree
// produces. Entry order follows the lexical walk order, so the same
// tree always yields the same manifest apart from ID and timestamp.
type Manifest struct {
	ID           string          `json:"id"`
	Taxonomy     label.Taxonomy  `json:"taxonomy"`
	Root         string          `json:"root"`
	CreatedAt    time.Time       `json:"created_at"`
	Entries      []ManifestEntry `json:"entries"`
	ClassCounts  map[int]int     `json:"class_counts"`
	UnknownCount int             `json:"unknown_count"`
}

// Labels returns the raw labels of all entries in row order.
func (m *Manifest) Labels() []label.RawLabel {
	labels := make([]label.RawLabel, len(m.Entries))
	for i, entry := range m.Entries {
		labels[i] = entry.Label
	}
	return labels
}

// WriteJSON serializes the manifest as an indented JSON artifact.
func (m *Manifest) WriteJSON(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest artifact back.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Builder walks dataset trees and assembles manifests.
type Builder struct {
	extractor  *Extractor
	mapper     *label.Mapper
	extensions map[string]bool
	logger     logging.Logger
}

// NewBuilder creates a builder with the default root-only mapper and
// audio extensions.
func NewBuilder() *Builder {
	return NewBuilderWithMapper(nil, nil)
}

// NewBuilderWithMapper creates a builder over a caller-configured
// mapper and extension list. nil means defaults.
func NewBuilderWithMapper(mapper *label.Mapper, extensions []string) *Builder {
	if mapper == nil {
		mapper = label.NewMapper()
	}
	if len(extensions) == 0 {
		extensions = defaultAudioExtensions
	}

	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}

	return &Builder{
		extractor:  NewExtractor(),
		mapper:     mapper,
		extensions: extSet,
		logger: logging.WithFields(logging.Fields{
			"component": "manifest_builder",
		}),
	}
}

// Build walks root and produces a manifest for the taxonomy. Files with
// unrecognizable names are recorded against the unknown class, never
// skipped, so row counts track the walk exactly.
func (b *Builder) Build(root string, taxonomy label.Taxonomy) (*Manifest, error) {
	if _, err := label.ParseTaxonomy(string(taxonomy)); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		ID:          uuid.NewString(),
		Taxonomy:    taxonomy,
		Root:        root,
		CreatedAt:   time.Now().UTC(),
		ClassCounts: make(map[int]int),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !b.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		raw, err := b.extractor.Extract(path, taxonomy)
		if err != nil {
			return err
		}

		indices := b.mapper.ResolveIndices(raw)
		manifest.Entries = append(manifest.Entries, ManifestEntry{
			Path:         path,
			Label:        raw,
			ClassIndices: indices,
		})
		for _, idx := range indices {
			manifest.ClassCounts[idx]++
		}
		if isUnknownLabel(raw) {
			manifest.UnknownCount++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk dataset root %s: %w", root, err)
	}

	b.logger.Info("built dataset manifest", logging.Fields{
		"root":     root,
		"taxonomy": string(taxonomy),
		"entries":  len(manifest.Entries),
		"unknown":  manifest.UnknownCount,
	})
	return manifest, nil
}

// isUnknownLabel reports whether extraction failed to find a usable
// label for the file.
func isUnknownLabel(raw label.RawLabel) bool {
	if raw.Kind == label.KindUnknown {
		return true
	}
	return raw.Kind == label.KindKey && raw.Key == label.UnknownToken
}
