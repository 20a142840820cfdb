package transport

import "math"

// Round2 rounds to the two places decimal columns keep, so reads match writes.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
