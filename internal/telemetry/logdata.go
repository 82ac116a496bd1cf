package telemetry

// LogData is the engine-agnostic snapshot set returned by getLog (spec.md
// §3, §6.5): one row per breakpoint, field 0 always Global.Time, then all
// integer fields, then all float fields, in registration order.
type LogData struct {
	Version    int
	StartTime  int64 // Unix seconds, stamped when the recorder is created
	TimeUnit   float64
	Timestamps []int64

	IntFieldNames   []string
	FloatFieldNames []string
	IntData         [][]int64   // [len(IntFieldNames)][len(Timestamps)]
	FloatData       [][]float64 // [len(FloatFieldNames)][len(Timestamps)]

	ConstantKeys   []string // preserves registration order
	ConstantValues map[string]string
}

// FieldNames returns the full field order of §6.5: Global.Time, then
// every int field, then every float field.
func (l LogData) FieldNames() []string {
	names := make([]string, 0, 1+len(l.IntFieldNames)+len(l.FloatFieldNames))
	names = append(names, "Global.Time")
	names = append(names, l.IntFieldNames...)
	names = append(names, l.FloatFieldNames...)
	return names
}
