package colstore

import "math"

// bandPass is a Butterworth-style band-pass built from first-order high-pass
// and low-pass sections cascaded order times. Applied forward and backward
// for zero phase, so the effective attenuation is twice the cascade's.
type bandPass struct {
	alphaHP float64
	alphaLP float64
	order   int
}

func newBandPass(lb, ub float64, order int, sampleRate float64) *bandPass {
	dt := 1 / sampleRate
	rcHP := 1 / (2 * math.Pi * lb)
	rcLP := 1 / (2 * math.Pi * ub)
	return &bandPass{
		alphaHP: rcHP / (rcHP + dt),
		alphaLP: dt / (rcLP + dt),
		order:   order,
	}
}

// filtfilt filters x in place, forward then backward, cancelling the phase
// distortion of each pass.
func (b *bandPass) filtfilt(x []float64) {
	b.forward(x)
	reverse(x)
	b.forward(x)
	reverse(x)
}

func (b *bandPass) forward(x []float64) {
	for i := 0; i < b.order; i++ {
		highPass(x, b.alphaHP)
		lowPass(x, b.alphaLP)
	}
}

func highPass(x []float64, alpha float64) {
	if len(x) == 0 {
		return
	}
	prevIn := x[0]
	prevOut := x[0]
	x[0] = 0
	for i := 1; i < len(x); i++ {
		in := x[i]
		out := alpha * (prevOut + in - prevIn)
		x[i] = out
		prevIn = in
		prevOut = out
	}
}

func lowPass(x []float64, alpha float64) {
	if len(x) == 0 {
		return
	}
	prev := x[0]
	for i := 1; i < len(x); i++ {
		prev += alpha * (x[i] - prev)
		x[i] = prev
	}
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
