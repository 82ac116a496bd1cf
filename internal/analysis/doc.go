// Package analysis provides read-only post-processing over recorded
// telemetry: spectral content of a single column via FFT, and
// divergence between two recorded trajectories via the largest
// Lyapunov exponent. Nothing here feeds back into a running engine.
package analysis
