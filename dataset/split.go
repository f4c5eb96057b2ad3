package dataset

import (
	"fmt"
	"math/rand"
)

// SplitResult holds the row indices assigned to each side of a
// train/validation split.
type SplitResult struct {
	Train []int   `json:"train"`
	Val   []int   `json:"val"`
	Ratio float64 `json:"ratio"`
	Seed  int64   `json:"seed"`
}

// Split shuffles row indices [0, n) with a seeded generator and cuts at
// ratio, training side first. The same n, ratio and seed always produce
// the same split.
func Split(n int, ratio float64, seed int64) (*SplitResult, error) {
	if n < 0 {
		return nil, fmt.Errorf("row count must be non-negative, got %d", n)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, fmt.Errorf("split ratio must be in (0, 1), got %g", ratio)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	cut := int(float64(n) * ratio)

	return &SplitResult{
		Train: perm[:cut],
		Val:   perm[cut:],
		Ratio: ratio,
		Seed:  seed,
	}, nil
}

// SplitManifest splits a manifest's entries into train and validation
// manifests sharing the parent's ID, taxonomy and root.
func SplitManifest(m *Manifest, ratio float64, seed int64) (*Manifest, *Manifest, error) {
	result, err := Split(len(m.Entries), ratio, seed)
	if err != nil {
		return nil, nil, err
	}

	train := m.subset(result.Train)
	val := m.subset(result.Val)
	return train, val, nil
}

// subset copies the manifest header and the selected entries,
// recounting classes for the slice.
func (m *Manifest) subset(rows []int) *Manifest {
	sub := &Manifest{
		ID:          m.ID,
		Taxonomy:    m.Taxonomy,
		Root:        m.Root,
		CreatedAt:   m.CreatedAt,
		Entries:     make([]ManifestEntry, 0, len(rows)),
		ClassCounts: make(map[int]int),
	}
	for _, row := range rows {
		entry := m.Entries[row]
		sub.Entries = append(sub.Entries, entry)
		for _, idx := range entry.ClassIndices {
			sub.ClassCounts[idx]++
		}
		if isUnknownLabel(entry.Label) {
			sub.UnknownCount++
		}
	}
	return sub
}
