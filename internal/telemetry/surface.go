package telemetry

// Surface is the contract the engine drives through a simulation's
// lifetime: registration happens at start() and is locked immediately
// afterward (spec.md §4.7); snapshots are emitted at each telemetry
// breakpoint and once more on stop().
type Surface interface {
	// RegisterConstant appends a scalar constant (URDF text, model
	// hash, serialized options, ...). Order is preserved for round-trip.
	RegisterConstant(key, value string)

	// RegisterIntField and RegisterFloatField declare a variable column
	// that every subsequent Snapshot must supply a value for. Declared
	// in link-creation order; Global.Time is implicit and always first.
	RegisterIntField(name string)
	RegisterFloatField(name string)

	// Lock freezes the registered field/constant set. Called once at
	// the end of start(), before the first Snapshot.
	Lock()

	// Snapshot appends one aligned row. t is the simulation time in
	// seconds; it is quantized to ticks of TimeUnit by the recorder.
	Snapshot(t float64, ints map[string]int64, floats map[string]float64)

	// Flush materializes everything recorded so far into a LogData
	// value, without resetting internal state (getLog is lazy/idempotent
	// per spec.md §6.1).
	Flush() LogData
}

// NopSurface discards everything; used when an engine runs without a
// telemetry sink.
type NopSurface struct{}

func (NopSurface) RegisterConstant(key, value string)                     {}
func (NopSurface) RegisterIntField(name string)                           {}
func (NopSurface) RegisterFloatField(name string)                        {}
func (NopSurface) Lock()                                                 {}
func (NopSurface) Snapshot(t float64, ints map[string]int64, floats map[string]float64) {}
func (NopSurface) Flush() LogData                                        { return LogData{} }
