// Package record is a concrete telemetry.Surface: it accumulates
// registered constants/fields and emitted snapshots in memory, and
// round-trips the result through two on-disk formats — an opaque gob
// binary blob, and a hierarchical columnar JSON document that mirrors
// the HDF5-style layout of spec.md §6.5 (root attributes, a
// /Global.Time dataset, a /constants group, and a /variables group with
// link-creation-order preserved).
package record
