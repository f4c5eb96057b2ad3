package label

import (
	"math"
	"testing"
)

func TestDecodeSingleSpike(t *testing.T) {
	decoder := NewPredictionDecoder()

	scores := make([]float64, NumClasses)
	scores[46] = 0.9

	decoded, err := decoder.Decode(scores, 5)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != 5 {
		t.Fatalf("got %d results, expected 5", len(decoded))
	}

	top := decoded[0]
	if top.PredictedNote != "A#3" {
		t.Errorf("top note = %q, expected A#3", top.PredictedNote)
	}
	if math.Abs(top.Confidence-0.9) > 1e-9 {
		t.Errorf("top confidence = %f, expected 0.9", top.Confidence)
	}
	if top.ClassIndex != 46 {
		t.Errorf("top class index = %d, expected 46", top.ClassIndex)
	}
	if top.Rank != 1 {
		t.Errorf("top rank = %d, expected 1", top.Rank)
	}
}

func TestDecodeTieBreaksByClassIndex(t *testing.T) {
	decoder := NewPredictionDecoder()

	scores := make([]float64, NumClasses)
	scores[60] = 0.5
	scores[48] = 0.5
	scores[12] = 0.5

	decoded, err := decoder.Decode(scores, 3)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	expected := []int{12, 48, 60}
	for i, idx := range expected {
		if decoded[i].ClassIndex != idx {
			t.Errorf("rank %d class = %d, expected %d (ties keep ascending index order)",
				i+1, decoded[i].ClassIndex, idx)
		}
	}
}

func TestDecodeRanksAreSequential(t *testing.T) {
	decoder := NewPredictionDecoder()

	scores := make([]float64, NumClasses)
	for i := range scores {
		scores[i] = float64(i) / NumClasses
	}

	decoded, err := decoder.Decode(scores, 10)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i, d := range decoded {
		if d.Rank != i+1 {
			t.Errorf("result %d has rank %d, expected %d", i, d.Rank, i+1)
		}
	}
	// Highest score is the last class, 95.
	if decoded[0].ClassIndex != 95 {
		t.Errorf("top class = %d, expected 95", decoded[0].ClassIndex)
	}
}

func TestDecodeTopKOutOfRangeMeansAll(t *testing.T) {
	decoder := NewPredictionDecoder()

	scores := make([]float64, NumClasses)
	decoded, err := decoder.Decode(scores, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != NumClasses {
		t.Errorf("got %d results, expected all %d", len(decoded), NumClasses)
	}
}

func TestDecodeRejectsWrongWidth(t *testing.T) {
	decoder := NewPredictionDecoder()

	if _, err := decoder.Decode(make([]float64, 12), 5); err == nil {
		t.Error("Decode accepted a 12-wide vector, expected error")
	}
}

func TestTop1(t *testing.T) {
	decoder := NewPredictionDecoder()

	scores := make([]float64, NumClasses)
	scores[50] = 0.7

	top, err := decoder.Top1(scores)
	if err != nil {
		t.Fatalf("Top1 failed: %v", err)
	}
	if top.PredictedNote != "D4" {
		t.Errorf("top note = %q, expected D4", top.PredictedNote)
	}
}
