package optics

import "testing"

func TestSquaredEuclidean(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical points", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"unit distance", []float64{0, 0}, []float64{1, 0}, 1},
		{"3-4-5 triangle", []float64{0, 0}, []float64{3, 4}, 25},
		{"negative coordinates", []float64{-1, -1}, []float64{1, 1}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SquaredEuclidean(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("SquaredEuclidean(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSquaredEuclideanDimensionMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on dimension mismatch")
		}
	}()
	SquaredEuclidean([]float64{1, 2}, []float64{1, 2, 3})
}
