package record

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/san-kum/robosim/internal/telemetry"
)

// WriteBinary serializes log as an opaque gob stream (spec.md §6.5:
// "Binary: opaque; round-trip through the telemetry recorder").
func WriteBinary(path string, log telemetry.LogData) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(log); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ReadBinary is the inverse of WriteBinary.
func ReadBinary(path string) (telemetry.LogData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return telemetry.LogData{}, err
	}
	var log telemetry.LogData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&log); err != nil {
		return telemetry.LogData{}, err
	}
	return log, nil
}
