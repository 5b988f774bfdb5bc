package engine

import (
	"fmt"
	"math"
)

type distanceFunc func(a, b []float32) float32

func distanceFor(t DistanceType) (distanceFunc, error) {
	switch t {
	case DistanceL2, "":
		return L2, nil
	case DistanceL1:
		return L1, nil
	case DistanceAngle:
		return Angle, nil
	case DistanceCosine:
		return Cosine, nil
	default:
		return nil, fmt.Errorf("unknown distance type: %s (supported: l2, l1, angle, cosine)", t)
	}
}

// L2 returns the Euclidean distance between a and b.
func L2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// L1 returns the Manhattan distance between a and b.
func L1(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i] - b[i]))
	}
	return float32(sum)
}

// Cosine returns 1 - cos(a, b), in [0, 2].
func Cosine(a, b []float32) float32 {
	return float32(1 - cosineSimilarity(a, b))
}

// Angle returns the angle between a and b in radians.
func Angle(a, b []float32) float32 {
	return float32(math.Acos(cosineSimilarity(a, b)))
}

// cosineSimilarity is clamped to [-1, 1]. Zero vectors are orthogonal to everything.
func cosineSimilarity(a, b []float32) float64 {
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, InnerProduct(a, b)/(na*nb)))
}

// InnerProduct returns the inner product of two vectors.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
