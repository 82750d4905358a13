package models

// SampleMessage is the queue payload carrying engagement samples for one session.
// Producers send either a single sample inline or a batch under "samples".
type SampleMessage struct {
	SessionID string `json:"session_id"`
	SampleInput
	Samples []SampleInput `json:"samples,omitempty"`
}

// Items returns the samples carried by the message
func (m *SampleMessage) Items() []SampleInput {
	if len(m.Samples) > 0 {
		return m.Samples
	}
	if m.Score == nil && m.Timestamp == "" {
		return nil
	}
	return []SampleInput{m.SampleInput}
}
