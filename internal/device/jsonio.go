package device

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// LoadRawDeviceFile reads a RawDevice from a JSON file and derives a cache
// key for it from the file's content hash, so LoadOrDerive's cache
// correctly misses whenever the underlying device description changes —
// the concrete stand-in for whatever content-addressing a real binary
// device-file decoder would use. Decoding the actual vendor device-file
// format is out of scope per §1/§6; this gives the CLI driver and tests a
// runnable external representation in its absence.
func LoadRawDeviceFile(path string) (*RawDevice, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read device file %s: %w", path, err)
	}
	var dev RawDevice
	if err := json.Unmarshal(data, &dev); err != nil {
		return nil, "", fmt.Errorf("decode device file %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return &dev, hex.EncodeToString(sum[:8]), nil
}
