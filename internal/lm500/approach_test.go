package lm500

import (
	"math"
	"testing"
)

func TestApproach(t *testing.T) {
	cases := []struct {
		name                       string
		current, target, speed, dt float64
		want                       float64
	}{
		{"steps up", 0, 10, 1, 2, 2},
		{"steps down", 10, 0, 1, 2, 8},
		{"lands exactly on target", 9.5, 10, 1, 2, 10},
		{"lands exactly when step equals distance", 8, 10, 1, 2, 10},
		{"lands exactly from above", 0.5, 0, 1, 1, 0},
		{"zero speed is a no-op", 3, 10, 0, 5, 3},
		{"negative speed is a no-op", 3, 10, -1, 5, 3},
		{"zero dt is a no-op", 3, 10, 1, 0, 3},
		{"negative dt is a no-op", 3, 10, 1, -1, 3},
		{"already at target", 10, 10, 1, 1, 10},
		{"NaN target holds the level", 3, math.NaN(), 1, 1, 3},
		{"infinite target still steps up", 3, math.Inf(1), 1, 1, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Approach(tc.current, tc.target, tc.speed, tc.dt)
			if got != tc.want {
				t.Fatalf("Approach(%v, %v, %v, %v) = %v, want %v",
					tc.current, tc.target, tc.speed, tc.dt, got, tc.want)
			}
		})
	}
}

func TestApproach_NeverOvershootsAndConvergesLikeOneTick(t *testing.T) {
	for _, target := range []float64{7.25, -4} {
		oneTick := Approach(0, target, 0.5, 100)
		if oneTick != target {
			t.Fatalf("one large tick: got %v, want %v", oneTick, target)
		}

		v := 0.0
		prevDist := math.Abs(target - v)
		for i := 0; i < 1000; i++ {
			v = Approach(v, target, 0.5, 0.1)
			dist := math.Abs(target - v)
			if dist > prevDist {
				t.Fatalf("tick %d moved away from target: %v", i, v)
			}
			if (target > 0 && v > target) || (target < 0 && v < target) {
				t.Fatalf("tick %d overshot target %v: %v", i, target, v)
			}
			prevDist = dist
		}
		if v != target {
			t.Fatalf("small ticks plateau at %v, want %v", v, target)
		}
	}
}
