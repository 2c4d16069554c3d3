// Package manifest builds the per-platform bundles of one animation asset
// and writes the record.json describing them.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	animerrors "github.com/provide-io/animbundle/pkg/errors"
)

// Record is the JSON sidecar describing an asset and its artifact URLs.
// Field order is the serialized order.
type Record struct {
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`
	Loop      bool    `json:"loop"`
	FrameRate float64 `json:"framerate"`
	URLs      URLSet  `json:"urls"`
}

// Marshal encodes the record as compact JSON.
func (r *Record) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

// ParseRecord decodes a record, rejecting unknown fields.
func ParseRecord(data []byte) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", animerrors.ErrInvalidRecord, err)
	}
	for _, key := range []string{"name", "duration", "loop", "framerate", "urls"} {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q", animerrors.ErrInvalidRecord, key)
		}
	}
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: unexpected fields", animerrors.ErrInvalidRecord)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", animerrors.ErrInvalidRecord, err)
	}
	return &r, nil
}

// ReadRecord loads and decodes a record file.
func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	r, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
