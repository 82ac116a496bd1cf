// Package telemetry defines the registration-and-snapshot contract the
// engine drives during a simulation: scalar constants registered once
// at start, integer/float variable fields registered before the first
// snapshot, and periodic aligned rows emitted at each breakpoint.
// Storage is external — see internal/telemetry/record for a concrete
// recorder.
package telemetry
