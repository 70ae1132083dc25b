// Package rpcjson lets Connect handlers exchange plain Go structs as JSON.
package rpcjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Name replaces Connect's protojson codec for the "application/json" content type.
const Name = "json"

var _ connect.Codec = Codec{}

type Codec struct{}

func (Codec) Name() string { return Name }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal rejects unknown fields so typos in requests surface as errors.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// Size reports the encoded size of msg, or 0 when it cannot be encoded.
func Size(msg any) int {
	if msg == nil {
		return 0
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return 0
	}
	return len(b)
}

// HandlerOption installs the codec on a Connect handler.
func HandlerOption() connect.HandlerOption { return connect.WithCodec(Codec{}) }

// ClientOption makes a Connect client speak JSON with this codec.
func ClientOption() connect.ClientOption { return connect.WithCodec(Codec{}) }
