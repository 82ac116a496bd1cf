package record

import (
	"encoding/json"
	"os"

	"github.com/san-kum/robosim/internal/telemetry"
)

// hierarchicalDoc mirrors the HDF5-style layout of spec.md §6.5 as a
// JSON document: root attributes VERSION/START_TIME, a /Global.Time
// dataset, a /constants group, and a /variables group. Groups are
// modeled as JSON arrays (not maps) so link-creation order survives a
// round trip — Go's encoding/json sorts map keys on encode, which would
// silently break the field/constant ordering guarantee.
type hierarchicalDoc struct {
	Version    int              `json:"VERSION"`
	StartTime  int64            `json:"START_TIME"`
	GlobalTime hierarchicalTime `json:"Global.Time"`
	Constants  []hierarchicalKV `json:"constants"`
	Variables  []hierarchicalVar `json:"variables"`
}

type hierarchicalTime struct {
	Unit float64 `json:"unit"`
	Data []int64 `json:"data"`
}

type hierarchicalKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type hierarchicalVar struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"` // "int" or "float"
	IntValue   []int64   `json:"intValue,omitempty"`
	FloatValue []float64 `json:"floatValue,omitempty"`
}

// WriteHierarchical serializes log as the columnar JSON document.
func WriteHierarchical(path string, log telemetry.LogData) error {
	doc := hierarchicalDoc{
		Version:    log.Version,
		StartTime:  log.StartTime,
		GlobalTime: hierarchicalTime{Unit: log.TimeUnit, Data: log.Timestamps},
	}
	for _, key := range log.ConstantKeys {
		doc.Constants = append(doc.Constants, hierarchicalKV{Key: key, Value: log.ConstantValues[key]})
	}
	for i, name := range log.IntFieldNames {
		doc.Variables = append(doc.Variables, hierarchicalVar{Name: name, Kind: "int", IntValue: log.IntData[i]})
	}
	for i, name := range log.FloatFieldNames {
		doc.Variables = append(doc.Variables, hierarchicalVar{Name: name, Kind: "float", FloatValue: log.FloatData[i]})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadHierarchical is the inverse of WriteHierarchical, reconstructing
// field order from the /variables array order.
func ReadHierarchical(path string) (telemetry.LogData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return telemetry.LogData{}, err
	}
	var doc hierarchicalDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return telemetry.LogData{}, err
	}

	log := telemetry.LogData{
		Version:        doc.Version,
		StartTime:      doc.StartTime,
		TimeUnit:       doc.GlobalTime.Unit,
		Timestamps:     doc.GlobalTime.Data,
		ConstantValues: make(map[string]string, len(doc.Constants)),
	}
	for _, kv := range doc.Constants {
		log.ConstantKeys = append(log.ConstantKeys, kv.Key)
		log.ConstantValues[kv.Key] = kv.Value
	}
	for _, v := range doc.Variables {
		switch v.Kind {
		case "int":
			log.IntFieldNames = append(log.IntFieldNames, v.Name)
			log.IntData = append(log.IntData, v.IntValue)
		case "float":
			log.FloatFieldNames = append(log.FloatFieldNames, v.Name)
			log.FloatData = append(log.FloatData, v.FloatValue)
		}
	}
	return log, nil
}
