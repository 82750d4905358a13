package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendSamplesRequest_Items(t *testing.T) {
	var single AppendSamplesRequest
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":"2024-01-01T10:00:00","score":0.8}`), &single))
	items := single.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "2024-01-01T10:00:00", items[0].Timestamp)
	assert.Equal(t, 0.8, items[0].Score)

	var batch AppendSamplesRequest
	require.NoError(t, json.Unmarshal([]byte(`{"samples":[{"score":0.1},{"score":"0.2"}]}`), &batch))
	items = batch.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "0.2", items[1].Score)

	var empty AppendSamplesRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty.Items())
}

func TestSampleMessage_Items(t *testing.T) {
	var msg SampleMessage
	require.NoError(t, json.Unmarshal([]byte(`{"session_id":"s1","timestamp":"2024-01-01T10:00:00Z","score":0.5,"ear":0.31}`), &msg))

	assert.Equal(t, "s1", msg.SessionID)
	items := msg.Items()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].EAR)
	assert.Equal(t, 0.31, *items[0].EAR)

	var batch SampleMessage
	require.NoError(t, json.Unmarshal([]byte(`{"session_id":"s1","samples":[{"score":0.5},{"score":0.6}]}`), &batch))
	assert.Len(t, batch.Items(), 2)
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 2*3600))
	assert.Equal(t, "2024-01-01T10:00:00Z", FormatTime(at))
}
