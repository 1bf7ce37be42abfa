package blur

// Strength controls how aggressively regions are blurred. Valid values run
// from MinStrength to MaxStrength; anything outside is clamped.
type Strength int

const (
	MinStrength     Strength = 5
	MaxStrength     Strength = 30
	DefaultStrength Strength = 15
)

// ClampStrength forces s into the supported range and reports whether the
// value had to change.
func ClampStrength(s Strength) (Strength, bool) {
	switch {
	case s < MinStrength:
		return MinStrength, true
	case s > MaxStrength:
		return MaxStrength, true
	default:
		return s, false
	}
}

// KernelSize returns the Gaussian kernel edge length for this strength.
// The kernel is at least 3 pixels and always odd.
func (s Strength) KernelSize() int {
	k := int(s)
	if k < 3 {
		k = 3
	}
	if k%2 == 0 {
		k++
	}
	return k
}

// Sigma returns the Gaussian standard deviation for this strength, derived
// from the kernel size with the same formula OpenCV uses when none is given:
// 0.3*((k-1)/2 - 1) + 0.8. It grows monotonically with strength.
func (s Strength) Sigma() float64 {
	k := s.KernelSize()
	return 0.3*(float64(k-1)/2.0-1.0) + 0.8
}
