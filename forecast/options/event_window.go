package options

import "gonum.org/v1/gonum/dsp/window"

// Window names accepted for shaping event masks
const (
	WindowRectangular = "rectangular"
	WindowHann        = "hann"
	WindowHamming     = "hamming"
	WindowBlackman    = "blackman"
	WindowTriangular  = "triangular"
	WindowTukey       = "tukey"
)

var WindowParamTukeyAlpha = 0.95

var windowFuncs = map[string]func(seq []float64) []float64{
	WindowRectangular: window.Rectangular,
	WindowHann:        window.Hann,
	WindowHamming:     window.Hamming,
	WindowBlackman:    window.Blackman,
	WindowTriangular:  window.Triangular,
	WindowTukey: func(seq []float64) []float64 {
		return window.Tukey{Alpha: WindowParamTukeyAlpha}.Transform(seq)
	},
}

// WindowFunc looks up a window by name. Unknown names fall back to a rectangular window
// which leaves the mask untouched.
func WindowFunc(name string) func(seq []float64) []float64 {
	if fn, ok := windowFuncs[name]; ok {
		return fn
	}
	return window.Rectangular
}
