package semantic

import (
	"encoding/json"
	"fmt"
	"io"
)

// Parse decodes a Semantic Data Contract document from r.
//
// Parse only fails for malformed JSON — spec.md §7 reserves the single
// global failure mode ("the input JSON cannot be parsed") for this step.
// Everything downstream (missing files, dangling references, unresolved
// calls) is handled as a per-item diagnostic by the Graph Builder instead.
func Parse(r io.Reader) (*SemanticData, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var data SemanticData
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("semantic: decode semantic data: %w", err)
	}
	return &data, nil
}

// ParseBytes is a convenience wrapper around Parse for callers that already
// hold the full document in memory (e.g. the CLI's build-from-json command).
func ParseBytes(b []byte) (*SemanticData, error) {
	var data SemanticData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("semantic: decode semantic data: %w", err)
	}
	return &data, nil
}
