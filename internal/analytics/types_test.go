package analytics

import (
	"math"
	"testing"
)

func TestTimeline_Stats(t *testing.T) {
	tl := Timeline{
		{Timestamp: "2024-01-01T10:00:00", Score: 0.2},
		{Timestamp: "2024-01-01T10:00:01", Score: 0.4},
		{Timestamp: "2024-01-01T10:00:02", Score: 0.6},
		{Timestamp: "2024-01-01T10:00:03", Score: 0.8},
	}

	if tl.Len() != 4 {
		t.Fatalf("Expected 4 samples, got %d", tl.Len())
	}
	if math.Abs(tl.Mean()-0.5) > 1e-9 {
		t.Errorf("Expected mean 0.5, got %f", tl.Mean())
	}
	// population std of {0.2,0.4,0.6,0.8} = sqrt(0.05)
	if math.Abs(tl.StdDev()-math.Sqrt(0.05)) > 1e-9 {
		t.Errorf("Expected population std %f, got %f", math.Sqrt(0.05), tl.StdDev())
	}
	if tl.Min() != 0.2 || tl.Max() != 0.8 {
		t.Errorf("Expected min/max 0.2/0.8, got %f/%f", tl.Min(), tl.Max())
	}

	scores := tl.Scores()
	if len(scores) != 4 || scores[3] != 0.8 {
		t.Errorf("Unexpected scores: %v", scores)
	}
	if tl.Timestamps()[1] != "2024-01-01T10:00:01" {
		t.Errorf("Unexpected timestamps: %v", tl.Timestamps())
	}
}

func TestTimeline_Empty(t *testing.T) {
	var tl Timeline
	if tl.Mean() != 0 || tl.StdDev() != 0 || tl.Min() != 0 || tl.Max() != 0 {
		t.Error("Expected zero statistics for empty timeline")
	}
}

func TestTimeline_SingleSampleStdDev(t *testing.T) {
	tl := Timeline{{Timestamp: "2024-01-01T10:00:00", Score: 0.7}}
	if tl.StdDev() != 0 {
		t.Errorf("Expected 0 std for single sample, got %f", tl.StdDev())
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{0.6499999, 2, 0.65},
		{0.12345, 3, 0.123},
		{66.66666, 1, 66.7},
		{0, 3, 0},
	}
	for _, tt := range tests {
		if got := Round(tt.in, tt.places); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}
