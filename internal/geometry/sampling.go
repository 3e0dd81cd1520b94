package geometry

import (
	"github.com/paulmach/orb"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// Stride is one order of magnitude less than the number of digits of n,
// ex: 390000 -> 10000. It never drops below 1.
func Stride(n int) int {
	k := 1
	for n >= 100 {
		n /= 10
		k *= 10
	}
	return k
}

// Sample keeps every k-th point and always appends the last one, even when
// it was already sampled.
func Sample(points []orb.Point, k int) []orb.Point {
	if len(points) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	out := make([]orb.Point, 0, len(points)/k+2)
	for i := 0; i < len(points); i += k {
		out = append(out, points[i])
	}
	return append(out, points[len(points)-1])
}

// ValidPoints drops every pair where lon or lat is NaN or out of range.
func ValidPoints(points []orb.Point) []orb.Point {
	out := make([]orb.Point, 0, len(points))
	for _, p := range points {
		if domain.ValidLonLat(p.Lon(), p.Lat()) {
			out = append(out, p)
		}
	}
	return out
}

// Zip pairs x and y values.
func Zip(xs, ys []float64) []orb.Point {
	n := min(len(xs), len(ys))
	out := make([]orb.Point, n)
	for i := 0; i < n; i++ {
		out[i] = orb.Point{xs[i], ys[i]}
	}
	return out
}
