package hmm

import (
	"reflect"
	"testing"
)

func testParams() Params {
	return Params{
		K:     2,
		Init:  []float64{0.6, 0.4},
		Trans: [][]float64{{0.9, 0.1}, {0.2, 0.8}},
		Mean:  []float64{0, 0},
		Var:   []float64{1, 25},
	}
}

func TestDecode_SeparatesObviousRegimes(t *testing.T) {
	p := testParams()
	obs := []float64{0.1, -0.2, 0.3, 12, -15, 11, 0.2, -0.1}

	path, _, err := Decode(p, obs)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []int{0, 0, 0, 1, 1, 1, 0, 0}
	if !reflect.DeepEqual(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	p := testParams()
	obs := []float64{0.5, 6, -7, 0.1, 0.2, 9, -0.3}

	p1, ll1, err := Decode(p, obs)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p2, ll2, err := Decode(p, obs)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(p1, p2) || ll1 != ll2 {
		t.Errorf("two decodes differ: %v (%.15f) vs %v (%.15f)", p1, ll1, p2, ll2)
	}
}

func TestDecode_TiesPreferLowerState(t *testing.T) {
	// Fully symmetric model: every path has identical probability, so the
	// decoder must stick to state 0 throughout.
	p := Params{
		K:     2,
		Init:  []float64{0.5, 0.5},
		Trans: [][]float64{{0.5, 0.5}, {0.5, 0.5}},
		Mean:  []float64{0, 0},
		Var:   []float64{1, 1},
	}
	path, _, err := Decode(p, []float64{0.1, -0.4, 0.7, 0})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, st := range path {
		if st != 0 {
			t.Fatalf("tie at t=%d resolved to state %d, want 0 (path %v)", i, st, path)
		}
	}
}

func TestDecode_EmptySequence(t *testing.T) {
	if _, _, err := Decode(testParams(), nil); err == nil {
		t.Fatal("expected error for empty sequence")
	}
}

func TestDecode_InvalidParams(t *testing.T) {
	p := testParams()
	p.Trans[0] = []float64{0.9, 0.9} // row no longer stochastic
	if _, _, err := Decode(p, []float64{1, 2}); err == nil {
		t.Fatal("expected error for invalid parameters")
	}
}
