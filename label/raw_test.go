package label

import (
	"encoding/json"
	"testing"
)

func TestClassifyToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected LabelKind
	}{
		{name: "bare note", token: "C4", expected: KindNote},
		{name: "note list is a chord", token: "C4-E4-G4", expected: KindChord},
		{name: "named chord classifies as note and parses the same", token: "Cmaj", expected: KindNote},
		{name: "hyphen with bad part is not a chord", token: "C4-x", expected: KindNote},
		{name: "leading digit", token: "123", expected: KindUnknown},
		{name: "empty", token: "", expected: KindUnknown},
		{name: "unknown sentinel", token: "unknown", expected: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyToken(tt.token); got.Kind != tt.expected {
				t.Errorf("ClassifyToken(%q).Kind = %v, expected %v", tt.token, got.Kind, tt.expected)
			}
		})
	}
}

func TestParseTaxonomy(t *testing.T) {
	for _, valid := range []string{"note", "chord", "key_tuning"} {
		if _, err := ParseTaxonomy(valid); err != nil {
			t.Errorf("ParseTaxonomy(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseTaxonomy("tempo"); err == nil {
		t.Error("ParseTaxonomy accepted an unsupported taxonomy")
	}
}

func TestRawLabelJSONRoundTrip(t *testing.T) {
	labels := []RawLabel{
		NewNoteToken("A#3"),
		NewChordToken("C4-E4-G4"),
		NewKeyLabel("Bb"),
		UnknownLabel(),
	}

	data, err := json.Marshal(labels)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back []RawLabel
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(back) != len(labels) {
		t.Fatalf("got %d labels back, expected %d", len(back), len(labels))
	}

	for i, lab := range labels {
		if back[i].Kind != lab.Kind {
			t.Errorf("label %d kind = %v, expected %v", i, back[i].Kind, lab.Kind)
		}
	}
	if back[2].Key != "Bb" {
		t.Errorf("key label came back as %q, expected Bb", back[2].Key)
	}
}

func TestRawLabelUnmarshalArtifactForms(t *testing.T) {
	var label RawLabel

	if err := json.Unmarshal([]byte(`"D4-G4"`), &label); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if label.Kind != KindChord || label.Token != "D4-G4" {
		t.Errorf("got %+v, expected chord token D4-G4", label)
	}

	if err := json.Unmarshal([]byte(`{"key": "F#"}`), &label); err != nil {
		t.Fatalf("unmarshal key object failed: %v", err)
	}
	if label.Kind != KindKey || label.Key != "F#" {
		t.Errorf("got %+v, expected key label F#", label)
	}

	if err := json.Unmarshal([]byte(`42`), &label); err == nil {
		t.Error("unmarshal accepted a number, expected error")
	}
}
