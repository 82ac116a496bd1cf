package record

import (
	"path/filepath"
	"reflect"
	"testing"
)

func sampleLog() *Recorder {
	r := New(1700000000, 1e-6)
	r.RegisterConstant("model", "pendulum")
	r.RegisterConstant("seed", "42")
	r.RegisterIntField("System0.iter")
	r.RegisterFloatField("System0.q0")
	r.RegisterFloatField("System0.v0")
	r.Lock()
	r.Snapshot(0.0, map[string]int64{"System0.iter": 0}, map[string]float64{"System0.q0": 1.5708, "System0.v0": 0})
	r.Snapshot(0.001, map[string]int64{"System0.iter": 1}, map[string]float64{"System0.q0": 1.57, "System0.v0": -0.08})
	return r
}

func TestBinaryRoundTrip(t *testing.T) {
	r := sampleLog()
	original := r.Flush()

	path := filepath.Join(t.TempDir(), "log.bin")
	if err := WriteBinary(path, original); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadBinary(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !reflect.DeepEqual(original, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", original, got)
	}
}

func TestHierarchicalRoundTrip(t *testing.T) {
	r := sampleLog()
	original := r.Flush()

	path := filepath.Join(t.TempDir(), "log.json")
	if err := WriteHierarchical(path, original); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadHierarchical(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if !reflect.DeepEqual(original.Timestamps, got.Timestamps) {
		t.Fatalf("timestamp mismatch: want %v got %v", original.Timestamps, got.Timestamps)
	}
	if !reflect.DeepEqual(original.IntData, got.IntData) {
		t.Fatalf("int data mismatch: want %v got %v", original.IntData, got.IntData)
	}
	if !reflect.DeepEqual(original.FloatData, got.FloatData) {
		t.Fatalf("float data mismatch: want %v got %v", original.FloatData, got.FloatData)
	}
	if !reflect.DeepEqual(original.FieldNames(), got.FieldNames()) {
		t.Fatalf("field order mismatch: want %v got %v", original.FieldNames(), got.FieldNames())
	}
	if !reflect.DeepEqual(original.ConstantKeys, got.ConstantKeys) {
		t.Fatalf("constant order mismatch: want %v got %v", original.ConstantKeys, got.ConstantKeys)
	}
}
