package codec

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/roach88/chronicle/internal/document"
)

// YAML is an alternative table codec for repositories where table files
// are reviewed and edited by hand.
type YAML struct{}

// Name implements Codec.
func (YAML) Name() string { return "yaml" }

// Encode implements Codec.
func (YAML) Encode(table document.Object) ([]byte, error) {
	if table == nil {
		table = document.Object{}
	}
	data, err := yaml.Marshal(document.Interface(table))
	if err != nil {
		return nil, &MalformedTableError{Format: "yaml", Reason: "encode failed", Err: err}
	}
	return data, nil
}

// Decode implements Codec. Empty input, or a document that YAML
// resolves to null, yields an empty mapping.
func (YAML) Decode(data []byte) (document.Object, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return document.Object{}, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedTableError{Format: "yaml", Reason: "invalid YAML", Err: err}
	}
	if raw == nil {
		return document.Object{}, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &MalformedTableError{Format: "yaml", Reason: "top level is not a mapping"}
	}

	v, err := document.FromGo(m)
	if err != nil {
		return nil, &MalformedTableError{Format: "yaml", Reason: "unsupported value", Err: err}
	}
	return v.(document.Object), nil
}
