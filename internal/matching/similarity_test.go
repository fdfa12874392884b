package matching

import (
	"math"
	"testing"
)

func TestCosineIdenticalUnitVectors(t *testing.T) {
	v := Normalize([]float32{3, 4})
	got, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("cosine of identical unit vector: want 1.0 got %v", got)
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := []float32{0.2, -0.5, 0.8}
	b := []float32{-0.1, 0.4, 0.3}
	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("Cosine(a,b): %v", err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatalf("Cosine(b,a): %v", err)
	}
	if ab != ba {
		t.Fatalf("cosine not symmetric: %v vs %v", ab, ba)
	}
}

func TestCosineBounds(t *testing.T) {
	cases := [][2][]float32{
		{{1, 0}, {0, 1}},
		{{1, 0}, {-1, 0}},
		{{0.5, 0.5, 0.5}, {0.1, 0.9, 0.2}},
		{{-3, 7}, {2, -9}},
	}
	for i, c := range cases {
		got, err := Cosine(c[0], c[1])
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got < -1-1e-9 || got > 1+1e-9 {
			t.Fatalf("case %d: cosine out of [-1,1]: %v", i, got)
		}
	}
}

func TestCosineZeroVector(t *testing.T) {
	got, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("Cosine with zero vector: %v", err)
	}
	if got != 0 {
		t.Fatalf("cosine with zero vector: want 0 got %v", got)
	}
}

func TestCosineLengthMismatch(t *testing.T) {
	if _, err := Cosine([]float32{1, 2}, []float32{1, 2, 3}); err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	v := Normalize([]float32{0, 0})
	if v[0] != 0 || v[1] != 0 {
		t.Fatalf("zero vector should stay zero, got %v", v)
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	v := Normalize([]float32{1, 2, 2})
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-6 {
		t.Fatalf("normalized norm: want 1.0 got %v", math.Sqrt(sum))
	}
}
