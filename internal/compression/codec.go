package compression

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyPayload is returned when decoding a payload with no header
var ErrEmptyPayload = errors.New("empty payload")

// Codec serializes values as JSON and compresses them. Encoded payloads start with one
// byte naming the algorithm, so a reader can decode payloads written with any algorithm.
type Codec struct {
	compressor Compressor
}

// NewCodec creates a codec that writes with algo
func NewCodec(algo Algorithm) (*Codec, error) {
	c, err := GetCompressor(algo)
	if err != nil {
		return nil, err
	}
	return &Codec{compressor: c}, nil
}

// Marshal encodes v
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	body, err := c.compressor.Compress(raw)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(c.compressor.Algorithm()))
	return append(out, body...), nil
}

// Unmarshal decodes data produced by Marshal into v
func (c *Codec) Unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	comp, err := GetCompressor(Algorithm(data[0]))
	if err != nil {
		return err
	}
	raw, err := comp.Decompress(data[1:])
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
