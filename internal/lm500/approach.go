package lm500

import "math"

// Approach moves current toward target at speed units per second over dt seconds.
// The step is clamped at target, so the result never overshoots in either direction.
// A NaN target leaves current unchanged.
func Approach(current, target, speed, dt float64) float64 {
	if speed <= 0 || dt <= 0 || math.IsNaN(target) {
		return current
	}
	step := speed * dt
	if math.Abs(target-current) <= step {
		return target
	}
	if target > current {
		return current + step
	}
	return current - step
}
