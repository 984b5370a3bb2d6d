package codec

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/chronicle/internal/document"
)

// JSON is the default table codec. Tables are written as 4-space
// indented JSON with sorted keys, one mapping per file.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Encode implements Codec.
func (JSON) Encode(table document.Object) ([]byte, error) {
	if table == nil {
		table = document.Object{}
	}
	data, err := json.MarshalIndent(table, "", "    ")
	if err != nil {
		return nil, &MalformedTableError{Format: "json", Reason: "encode failed", Err: err}
	}
	return append(data, '\n'), nil
}

// Decode implements Codec. Empty or whitespace-only input yields an
// empty mapping.
func (JSON) Decode(data []byte) (document.Object, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return document.Object{}, nil
	}

	v, err := document.Unmarshal(data)
	if err != nil {
		return nil, &MalformedTableError{Format: "json", Reason: "invalid JSON", Err: err}
	}

	table, ok := v.(document.Object)
	if !ok {
		return nil, &MalformedTableError{Format: "json", Reason: "top level is not a mapping"}
	}
	return table, nil
}
