package engagement

import (
	"fmt"
	"math"
	"testing"
	"time"
)

func TestCalculateBasicStats(t *testing.T) {
	samples := createTestSamples([]float64{0.2, 0.4, 0.6, 0.8}, time.Second)

	stats := CalculateBasicStats(samples)

	if !almostEqual(stats.AvgScore, 0.5) {
		t.Errorf("Expected avg 0.5, got %f", stats.AvgScore)
	}
	if !almostEqual(stats.StdScore, math.Sqrt(0.05)) {
		t.Errorf("Expected population std %f, got %f", math.Sqrt(0.05), stats.StdScore)
	}
	if stats.MinScore != 0.2 || stats.MaxScore != 0.8 {
		t.Errorf("Expected min/max 0.2/0.8, got %f/%f", stats.MinScore, stats.MaxScore)
	}
}

func TestCalculateBasicStats_Empty(t *testing.T) {
	stats := CalculateBasicStats(nil)
	if stats != (BasicStats{}) {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
}

func TestCalculateVolatility(t *testing.T) {
	samples := createTestSamples([]float64{0.2, 0.4, 0.6, 0.8}, time.Second)

	// population std = 0.2236..., rounded to 3 decimals
	if got := CalculateVolatility(samples); got != 0.224 {
		t.Errorf("Expected volatility 0.224, got %f", got)
	}
	if got := CalculateVolatility(createTestSamples([]float64{0.5}, time.Second)); got != 0 {
		t.Errorf("Expected volatility 0 for single sample, got %f", got)
	}
	if got := CalculateVolatility(nil); got != 0 {
		t.Errorf("Expected volatility 0 for empty input, got %f", got)
	}
}

func TestCalculateAttentionScore_Bands(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"excellent upper", 1.0, 100},
		{"excellent lower bound inclusive", 0.8, 100},
		{"good just below excellent", 0.79, 75},
		{"good lower bound inclusive", 0.6, 75},
		{"fair", 0.5, 50},
		{"fair lower bound inclusive", 0.4, 50},
		{"poor", 0.39, 25},
		{"zero", 0.0, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := createTestSamples([]float64{tt.value}, time.Second)
			if got := CalculateAttentionScore(samples); got != tt.want {
				t.Errorf("mean %.2f: expected %d, got %d", tt.value, tt.want, got)
			}
		})
	}
}

func TestCalculateAttentionScore_Empty(t *testing.T) {
	if got := CalculateAttentionScore(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %d", got)
	}
}

func TestCalculateAttentionScore_OnlyBandValues(t *testing.T) {
	allowed := map[int]bool{0: true, 25: true, 50: true, 75: true, 100: true}
	for v := 0.0; v <= 1.0; v += 0.01 {
		got := CalculateAttentionScore(createTestSamples([]float64{v}, time.Second))
		if !allowed[got] {
			t.Fatalf("score %f mapped to non-band value %d", v, got)
		}
	}
}

func TestCalculateFocusTimePercentage(t *testing.T) {
	samples := createTestSamples([]float64{0.9, 0.8, 0.71, 0.7, 0.2, 0.1}, time.Second)

	// 3 of 6 strictly above 0.7
	if got := CalculateFocusTimePercentage(samples); got != 50.0 {
		t.Errorf("Expected 50.0, got %f", got)
	}
}

func TestCalculateFocusTimePercentage_BoundaryExcluded(t *testing.T) {
	samples := createTestSamples(repeat(0.7, 10), time.Second)
	if got := CalculateFocusTimePercentage(samples); got != 0.0 {
		t.Errorf("Expected 0.0 when every score equals the threshold, got %f", got)
	}
}

func TestCalculateFocusTimePercentage_Rounding(t *testing.T) {
	samples := createTestSamples([]float64{0.9, 0.9, 0.1}, time.Second)
	if got := CalculateFocusTimePercentage(samples); got != 66.7 {
		t.Errorf("Expected 66.7, got %f", got)
	}
	if got := CalculateFocusTimePercentage(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %f", got)
	}
}

func TestCalculateDistribution(t *testing.T) {
	samples := createTestSamples([]float64{0.1, 0.32, 0.33, 0.5, 0.66, 0.67, 0.9, 1.0}, time.Second)

	dist := CalculateDistribution(samples)

	if dist.Low != 0.25 || dist.Medium != 0.375 || dist.High != 0.375 {
		t.Errorf("Unexpected distribution %+v", dist)
	}
}

func TestCalculateDistribution_SumsToOne(t *testing.T) {
	inputs := [][]float64{
		{0.1, 0.5, 0.9},
		{0.2, 0.2, 0.2, 0.2, 0.2, 0.2, 0.9},
		{0.4, 0.8, 0.8, 0.1, 0.3, 0.6, 0.7, 0.68, 0.05, 0.95, 0.5},
		{0.67},
	}
	for _, values := range inputs {
		dist := CalculateDistribution(createTestSamples(values, time.Second))
		sum := dist.Low + dist.Medium + dist.High
		if math.Abs(sum-1.0) > 0.0015 {
			t.Errorf("distribution of %v sums to %f", values, sum)
		}
	}
}

func TestCalculateDistribution_Empty(t *testing.T) {
	if dist := CalculateDistribution(nil); dist != (Distribution{}) {
		t.Errorf("Expected all-zero distribution, got %+v", dist)
	}
}

func TestCalculateDuration(t *testing.T) {
	samples := createTestSamples([]float64{0.5, 0.5, 0.5}, 65*time.Second)

	d := CalculateDuration(samples)

	if d.Seconds != 130 || d.Minutes != 2 || d.Formatted != "2m 10s" {
		t.Errorf("Unexpected duration %+v", d)
	}
}

func TestCalculateDuration_Degenerate(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
	}{
		{"empty", nil},
		{"bad start", []Sample{{Timestamp: "yesterday", Score: 0.5}, {Timestamp: "2024-01-01T10:00:00", Score: 0.5}}},
		{"bad end", []Sample{{Timestamp: "2024-01-01T10:00:00", Score: 0.5}, {Timestamp: "", Score: 0.5}}},
		{"out of order", []Sample{{Timestamp: "2024-01-01T10:05:00", Score: 0.5}, {Timestamp: "2024-01-01T10:00:00", Score: 0.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CalculateDuration(tt.samples)
			if d.Seconds != 0 || d.Minutes != 0 || d.Formatted != "0m 0s" {
				t.Errorf("Expected zero duration, got %+v", d)
			}
		})
	}
}

func TestNewDuration_RoundTrip(t *testing.T) {
	for _, seconds := range []int{0, 1, 59, 60, 61, 119, 3599, 3600, 7322} {
		d := NewDuration(seconds)
		var minutes, secs int
		if _, err := fmt.Sscanf(d.Formatted, "%dm %ds", &minutes, &secs); err != nil {
			t.Fatalf("cannot parse %q: %v", d.Formatted, err)
		}
		if minutes*60+secs != seconds {
			t.Errorf("%q does not round-trip to %d", d.Formatted, seconds)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	valid := []string{
		"2024-01-01T10:00:00",
		"2024-01-01T10:00:00.123456",
		"2024-01-01T10:00:00Z",
		"2024-01-01T10:00:00+05:30",
		"2024-01-01T10:00:00.5+00:00",
		"2024-01-01 10:00:00",
		"2024-01-01 10:00:00+00:00",
		"2024-01-01T10:00",
		"2024-01-01 10:00",
		"2024-01-01T10:00:00+0530",
		"2024-01-01T10:00:00.25-0700",
	}
	for _, raw := range valid {
		if _, err := ParseTimestamp(raw); err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", raw, err)
		}
	}

	invalid := []string{"", "   ", "not-a-time", "10:00:00", "2024/01/01 10:00"}
	for _, raw := range invalid {
		if _, err := ParseTimestamp(raw); err == nil {
			t.Errorf("ParseTimestamp(%q) should fail", raw)
		}
	}
}

func TestParseTimestamp_CompactOffsetAndMinutes(t *testing.T) {
	compact, err := ParseTimestamp("2024-01-01T10:00:00+0530")
	if err != nil {
		t.Fatal(err)
	}
	colon, err := ParseTimestamp("2024-01-01T10:00:00+05:30")
	if err != nil {
		t.Fatal(err)
	}
	if !compact.Equal(colon) {
		t.Errorf("Expected +0530 and +05:30 to agree, got %v vs %v", compact, colon)
	}

	seconds, err := secondsBetween("2024-01-01T10:00", "2024-01-01 10:02")
	if err != nil {
		t.Fatal(err)
	}
	if seconds != 120 {
		t.Errorf("Expected 120s between minute-precision timestamps, got %d", seconds)
	}
}

func TestParseTimestamp_NaiveIsUTC(t *testing.T) {
	naive, err := ParseTimestamp("2024-01-01T10:00:00")
	if err != nil {
		t.Fatal(err)
	}
	aware, err := ParseTimestamp("2024-01-01T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !naive.Equal(aware) {
		t.Errorf("Expected naive timestamp to be UTC, got %v vs %v", naive, aware)
	}
}
