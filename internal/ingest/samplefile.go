package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/classpulse/classpulse/internal/analytics"
)

// ReadSamples decodes a sample file: a JSON array when ext is ".json", otherwise CSV
// rows of timestamp,score with an optional header.
func ReadSamples(r io.Reader, ext string) ([]analytics.Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(ext, ".json") {
		var samples []analytics.Sample
		if err := json.Unmarshal(data, &samples); err != nil {
			return nil, fmt.Errorf("invalid JSON samples: %w", err)
		}
		return samples, nil
	}
	return readCSV(bytes.NewReader(data))
}

func readCSV(r io.Reader) ([]analytics.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "timestamp") {
		records = records[1:]
	}

	samples := make([]analytics.Sample, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("row %d: expected timestamp,score", i+1)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid score %q", i+1, rec[1])
		}
		samples = append(samples, analytics.Sample{Timestamp: strings.TrimSpace(rec[0]), Score: score})
	}
	return samples, nil
}
