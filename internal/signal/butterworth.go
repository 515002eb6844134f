package signal

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Pulse band corners in Hz. 0.5-5 Hz covers 30-300 BPM.
const (
	BandLowHz  = 0.5
	BandHighHz = 5.0

	// filterOrder is the Butterworth prototype order. The band-pass
	// transform doubles it, so the realized transfer function has
	// 2*filterOrder+1 coefficients.
	filterOrder = 4
)

// BandpassFilter is a digital Butterworth band-pass filter designed for a
// fixed sample rate. Apply is zero-phase, so peak positions in the output
// are not shifted relative to the input - downstream peak timing directly
// yields heart rate.
type BandpassFilter struct {
	b, a []float64
}

// DesignBandpass designs the pulse-band filter for the given sample rate.
// The upper corner is clamped below Nyquist so low sample rates still yield
// a stable design. Returns an error only for unusable configuration (rate
// so low the band collapses, or non-positive).
func DesignBandpass(fs float64) (*BandpassFilter, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("design bandpass: sample rate must be positive, got %v", fs)
	}
	nyq := fs / 2
	low := BandLowHz / nyq
	high := math.Min(BandHighHz, nyq*0.99) / nyq
	if low > 0.99 {
		low = 0.99
	}
	if high > 0.99 {
		high = 0.99
	}
	if low >= high {
		return nil, fmt.Errorf("design bandpass: band collapsed at fs=%v Hz", fs)
	}

	b, a := butterBandpass(filterOrder, low, high)
	return &BandpassFilter{b: b, a: a}, nil
}

// Apply runs the filter forward-backward over a detrended segment.
// Segments too short to stabilize the filter are returned unfiltered
// (copied) rather than failing: the caller's peak detector handles them.
func (f *BandpassFilter) Apply(seg []float64) []float64 {
	if len(seg) < 4 {
		out := make([]float64, len(seg))
		copy(out, seg)
		return out
	}
	return filtfilt(f.b, f.a, seg)
}

// butterBandpass computes transfer-function coefficients for an analog
// Butterworth low-pass prototype transformed to band-pass and discretized
// with the bilinear transform. low and high are in units of Nyquist.
func butterBandpass(order int, low, high float64) (b, a []float64) {
	// Prewarp the corner frequencies for the bilinear transform.
	const fs2 = 2.0
	warpedLow := 2 * fs2 * math.Tan(math.Pi*low/fs2)
	warpedHigh := 2 * fs2 * math.Tan(math.Pi*high/fs2)
	bw := warpedHigh - warpedLow
	wo := math.Sqrt(warpedLow * warpedHigh)

	// Analog low-pass prototype: poles evenly spaced on the unit
	// circle's left half, no zeros, unit gain.
	poles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		poles = append(poles, -cmplx.Exp(complex(0, math.Pi*float64(m)/(2*float64(order)))))
	}

	// Low-pass to band-pass: each pole splits into a pair around the
	// center frequency; the prototype gains order zeros at s=0.
	bpPoles := make([]complex128, 0, 2*order)
	for _, p := range poles {
		ps := p * complex(bw/2, 0)
		disc := cmplx.Sqrt(ps*ps - complex(wo*wo, 0))
		bpPoles = append(bpPoles, ps+disc, ps-disc)
	}
	bpZeros := make([]complex128, order) // all at s=0
	gain := math.Pow(bw, float64(order))

	// Bilinear transform s -> z at fs2.
	f4 := complex(2*fs2, 0)
	zZeros := make([]complex128, 0, 2*order)
	num := complex(1, 0)
	den := complex(1, 0)
	for _, z := range bpZeros {
		zZeros = append(zZeros, (f4+z)/(f4-z))
		num *= f4 - z
	}
	zPoles := make([]complex128, 0, 2*order)
	for _, p := range bpPoles {
		zPoles = append(zPoles, (f4+p)/(f4-p))
		den *= f4 - p
	}
	// Zeros at infinity map to z=-1.
	for i := len(zZeros); i < len(zPoles); i++ {
		zZeros = append(zZeros, -1)
	}
	k := gain * real(num/den)

	b = realPoly(zZeros)
	for i := range b {
		b[i] *= k
	}
	a = realPoly(zPoles)
	return b, a
}

// realPoly expands the monic polynomial with the given roots and returns
// its real coefficients. Roots arrive in conjugate pairs, so the imaginary
// parts cancel up to rounding.
func realPoly(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}
