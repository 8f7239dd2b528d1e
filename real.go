package vmcore

import "math"

// Real wraps a double-precision float and centralizes every rounding rule
// the original runtime documents. Callers never convert Real to an integer
// with a bare float64->int cast; each call site names the rounding mode it
// needs (Round, Floor, Trunc) so the discipline survives code review.
type Real float64

// RealFromInt lifts an integer into Real.
func RealFromInt(i int32) Real {
	return Real(i)
}

// Float64 returns the underlying double.
func (r Real) Float64() float64 {
	return float64(r)
}

// Add, Sub, Mul, Div implement the standard arithmetic. Division by zero
// follows IEEE-754 (±Inf or NaN), matching the original runtime rather than
// panicking.
func (r Real) Add(o Real) Real { return r + o }
func (r Real) Sub(o Real) Real { return r - o }
func (r Real) Mul(o Real) Real { return r * o }
func (r Real) Div(o Real) Real { return r / o }

// Neg returns -r.
func (r Real) Neg() Real { return -r }

// Abs returns |r|.
func (r Real) Abs() Real { return Real(math.Abs(float64(r))) }

// Round converts to the nearest integer using banker's rounding
// (round-half-to-even), matching the original runtime's drawing-coordinate
// conversion.
func (r Real) Round() int32 {
	return int32(math.RoundToEven(float64(r)))
}

// Floor converts toward negative infinity, matching the original runtime's
// array-index conversion.
func (r Real) Floor() int32 {
	return int32(math.Floor(float64(r)))
}

// Ceil converts toward positive infinity.
func (r Real) Ceil() int32 {
	return int32(math.Ceil(float64(r)))
}

// Trunc converts toward zero, matching the original runtime's collision
// sub-pixel sampling rule.
func (r Real) Trunc() int32 {
	return int32(r)
}

// ToI32 is an alias for Trunc kept for call sites that want to spell out
// "the default conversion" without committing to a specific rounding mode
// in the name; prefer Round/Floor/Trunc directly in new code.
func (r Real) ToI32() int32 {
	return r.Trunc()
}

// Sin, Cos, Tan evaluate in radians.
func (r Real) Sin() Real { return Real(math.Sin(float64(r))) }
func (r Real) Cos() Real { return Real(math.Cos(float64(r))) }
func (r Real) Tan() Real { return Real(math.Tan(float64(r))) }

// Sqrt returns the square root; NaN for negative input, matching IEEE-754.
func (r Real) Sqrt() Real { return Real(math.Sqrt(float64(r))) }

// Arctan2 matches the original runtime's quadrant convention: degrees in
// [0, 360), measured from the positive x-axis counterclockwise as seen on
// screen with y increasing downward (so up is 90 and down is 270), rather
// than math.Atan2's [-pi, pi] radians.
func Arctan2(y, x Real) Real {
	deg := math.Atan2(-float64(y), float64(x)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return Real(deg)
}

// DegToRad converts degrees to radians.
func DegToRad(deg Real) Real {
	return Real(float64(deg) * math.Pi / 180)
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad Real) Real {
	return Real(float64(rad) * 180 / math.Pi)
}

// Lerp linearly interpolates between a and b by t in [0, 1].
func Lerp(a, b, t Real) Real {
	return a + (b-a)*t
}

// Clamp restricts r to [lo, hi].
func Clamp(r, lo, hi Real) Real {
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}
