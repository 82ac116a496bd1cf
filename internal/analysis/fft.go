package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the one-sided magnitude spectrum of a real-valued sample
// sequence: Frequencies[i] in Hz paired with Magnitudes[i].
type Spectrum struct {
	Frequencies []float64
	Magnitudes  []float64
}

// FFT computes the one-sided magnitude spectrum of samples taken at a
// fixed interval dt (seconds). Delegates to go-dsp's mixed-radix
// transform, which unlike a textbook radix-2 recursion does not require
// len(samples) to be a power of two — recorded telemetry columns rarely
// are.
func FFT(samples []float64, dt float64) Spectrum {
	n := len(samples)
	if n == 0 || dt <= 0 {
		return Spectrum{}
	}

	coeffs := fft.FFTReal(samples)
	half := n/2 + 1

	spec := Spectrum{
		Frequencies: make([]float64, half),
		Magnitudes:  make([]float64, half),
	}
	for k := 0; k < half; k++ {
		spec.Frequencies[k] = float64(k) / (float64(n) * dt)
		mag := cmplx.Abs(coeffs[k]) / float64(n)
		if k > 0 && k < n-half+1 {
			mag *= 2 // fold the negative-frequency half back in
		}
		spec.Magnitudes[k] = mag
	}
	return spec
}

// DominantFrequency returns the frequency of the largest non-DC bin in
// spec, or 0 if spec has fewer than two bins.
func DominantFrequency(spec Spectrum) float64 {
	if len(spec.Magnitudes) < 2 {
		return 0
	}
	best := 1
	for k := 2; k < len(spec.Magnitudes); k++ {
		if spec.Magnitudes[k] > spec.Magnitudes[best] {
			best = k
		}
	}
	return spec.Frequencies[best]
}
