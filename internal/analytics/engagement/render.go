package engagement

import (
	"fmt"
	"strings"
	"time"
)

// percent formats a 0-1 fraction as a one-decimal percentage ("65.0%")
func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// RenderSummaryReport renders the fixed-template plain-text session report used for chat
// messages and text displays. A nil result renders as the empty report.
func RenderSummaryReport(result *AnalyticsResult) string {
	if result == nil {
		result = EmptyResult(NewDuration(0), time.Now().UTC())
	}
	s := result.Summary
	d := result.Distribution
	c := result.CriticalMoments
	se := result.SustainedEngagement

	var b strings.Builder
	b.WriteString("SESSION ENGAGEMENT REPORT\n\n")

	b.WriteString("Key Statistics:\n")
	fmt.Fprintf(&b, "- Average Engagement: %s\n", percent(s.AvgScore))
	fmt.Fprintf(&b, "- Attention Score: %d/100\n", s.AttentionScore)
	fmt.Fprintf(&b, "- Focus Time: %.1f%%\n", s.FocusTimePercentage)
	fmt.Fprintf(&b, "- Peak Engagement: %s\n", percent(s.MaxScore))
	fmt.Fprintf(&b, "- Lowest Engagement: %s\n", percent(s.MinScore))
	fmt.Fprintf(&b, "- Volatility: %.3f (lower = more stable)\n", s.Volatility)
	fmt.Fprintf(&b, "- Total Data Points: %d\n", s.TotalPoints)
	fmt.Fprintf(&b, "- Session Duration: %s\n\n", s.Formatted)

	b.WriteString("Engagement Breakdown:\n")
	fmt.Fprintf(&b, "- High Engagement (>67%%): %s\n", percent(d.High))
	fmt.Fprintf(&b, "- Medium Engagement (33-67%%): %s\n", percent(d.Medium))
	fmt.Fprintf(&b, "- Low Engagement (<33%%): %s\n\n", percent(d.Low))

	b.WriteString("Attention Issues:\n")
	fmt.Fprintf(&b, "- Distraction Spikes: %d\n", c.TotalSpikes)
	fmt.Fprintf(&b, "- Engagement Dropoffs: %d\n\n", c.TotalDropoffs)

	b.WriteString("Focus Patterns:\n")
	fmt.Fprintf(&b, "- Sustained High Focus Periods: %d\n", len(se.HighFocusSegments))
	fmt.Fprintf(&b, "- Low Attention Segments: %d\n\n", len(se.LowAttentionSegments))

	fmt.Fprintf(&b, "Generated: %s", result.ComputedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// RenderDropoffDetails lists the displayed dropoffs, largest first.
func RenderDropoffDetails(result *AnalyticsResult) string {
	if result == nil || len(result.CriticalMoments.Dropoffs) == 0 {
		return "No significant engagement dropoffs detected."
	}

	var b strings.Builder
	b.WriteString("Engagement Dropoffs:\n\n")
	for i, d := range result.CriticalMoments.Dropoffs {
		timestamp := d.Timestamp
		if timestamp == "" {
			timestamp = "Unknown"
		}
		fmt.Fprintf(&b, "%d. Time: %s\n", i+1, timestamp)
		fmt.Fprintf(&b, "   Drop: %s -> %s (down %s)\n\n", percent(d.FromScore), percent(d.ToScore), percent(d.Drop))
	}
	return strings.TrimRight(b.String(), "\n")
}
