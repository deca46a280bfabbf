package physnetlist

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadFile decodes a Design from a JSON file. A decoding error is fatal
// per §7 ("bad input file / decoding error -> fatal; abort with
// diagnostic"); the caller is expected to treat any returned error that
// way.
func ReadFile(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var d Design
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &d, nil
}

// WriteFile encodes a Design as indented JSON to path.
func WriteFile(path string, d *Design) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
