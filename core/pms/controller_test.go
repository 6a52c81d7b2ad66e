package pms

import (
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func testTopology() Topology {
	return Topology{
		Switchboards:    map[int]int{1: 1, 2: 2},
		BusTieCount:     1,
		RatedPowerKW:    1000,
		MaxLoadFraction: 0.8,
	}
}

func TestIdealGensetsOn(t *testing.T) {
	c, err := NewController(testTopology())
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	demand := []float64{-100, 0, 500, 1500, 1999, 2500, 3500}
	counts, unmet := c.IdealGensetsOn(demand)
	wantCounts := []int{1, 1, 1, 2, 3, 3, 3}
	wantUnmet := []bool{false, false, false, false, false, true, true}
	if !reflect.DeepEqual(counts, wantCounts) {
		t.Fatalf("counts %v, want %v", counts, wantCounts)
	}
	if !reflect.DeepEqual(unmet, wantUnmet) {
		t.Fatalf("unmet %v, want %v", unmet, wantUnmet)
	}
}

func TestIdealGensetsOnMonotonic(t *testing.T) {
	c, err := NewController(Topology{
		Switchboards:    map[int]int{1: 4, 2: 4},
		BusTieCount:     2,
		RatedPowerKW:    800,
		MaxLoadFraction: 0.85,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	demand := make([]float64, 500)
	for i := range demand {
		demand[i] = rng.Float64() * 7000
	}
	sort.Float64s(demand)
	counts, _ := c.IdealGensetsOn(demand)
	for i := 1; i < len(counts); i++ {
		if counts[i] < counts[i-1] {
			t.Fatalf("counts not non-decreasing at %d: %v then %v", i, counts[i-1], counts[i])
		}
	}
}

func TestStatusMatrixFillOrder(t *testing.T) {
	c, err := NewController(testTopology())
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	m := c.StatusMatrix([]int{1, 2, 3})
	want1 := [][]int{{1}, {1}, {1}}
	want2 := [][]int{{0, 0}, {1, 0}, {1, 1}}
	if !reflect.DeepEqual(m[1], want1) {
		t.Fatalf("switchboard 1 matrix %v, want %v", m[1], want1)
	}
	if !reflect.DeepEqual(m[2], want2) {
		t.Fatalf("switchboard 2 matrix %v, want %v", m[2], want2)
	}
}

func TestStatusMatrixConservation(t *testing.T) {
	top := Topology{
		Switchboards:    map[int]int{1: 2, 2: 3, 3: 1},
		BusTieCount:     2,
		RatedPowerKW:    500,
		MaxLoadFraction: 0.9,
	}
	c, err := NewController(top)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	counts := []int{1, 2, 3, 4, 5, 6, 9}
	m := c.StatusMatrix(counts)
	installed := top.TotalInstalled()
	for t0, k := range counts {
		want := k
		if want > installed {
			want = installed
		}
		sum := 0
		for id, n := range top.Switchboards {
			row := m[id][t0]
			if len(row) != n {
				t.Fatalf("switchboard %d row length %d, installed %d", id, len(row), n)
			}
			for _, on := range row {
				sum += on
			}
		}
		if sum != want {
			t.Fatalf("timestep %d: %d units on, want %d", t0, sum, want)
		}
	}
}

func TestStatusMatrixGappedIDs(t *testing.T) {
	c, err := NewController(Topology{
		Switchboards:    map[int]int{10: 1, 4: 1, 7: 2},
		BusTieCount:     1,
		RatedPowerKW:    1000,
		MaxLoadFraction: 0.8,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	// numeric ascending order: 4, 7, 10
	m := c.StatusMatrix([]int{3})
	if !reflect.DeepEqual(m[4], [][]int{{1}}) || !reflect.DeepEqual(m[7], [][]int{{1, 1}}) || !reflect.DeepEqual(m[10], [][]int{{0}}) {
		t.Fatalf("unexpected fill for gapped ids: %v", m)
	}
}

func TestDispatchSingleTimestep(t *testing.T) {
	c, err := NewController(testTopology())
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	st := c.Dispatch(1500)
	if st.GensetsOn != 2 || st.Unmet {
		t.Fatalf("unexpected state %+v", st)
	}
	if !reflect.DeepEqual(st.Status[1], []int{1}) || !reflect.DeepEqual(st.Status[2], []int{1, 0}) {
		t.Fatalf("unexpected status %v", st.Status)
	}

	st = c.Dispatch(5000)
	if st.GensetsOn != 3 || !st.Unmet {
		t.Fatalf("expected capped unmet state, got %+v", st)
	}
}

func TestTopologyValidation(t *testing.T) {
	cases := []struct {
		name string
		top  Topology
	}{
		{"no switchboards", Topology{BusTieCount: 1, RatedPowerKW: 1000, MaxLoadFraction: 0.8}},
		{"zero gensets", Topology{Switchboards: map[int]int{1: 0}, BusTieCount: 1, RatedPowerKW: 1000, MaxLoadFraction: 0.8}},
		{"no bus tie", Topology{Switchboards: map[int]int{1: 1}, RatedPowerKW: 1000, MaxLoadFraction: 0.8}},
		{"zero rated power", Topology{Switchboards: map[int]int{1: 1}, BusTieCount: 1, MaxLoadFraction: 0.8}},
		{"load fraction above one", Topology{Switchboards: map[int]int{1: 1}, BusTieCount: 1, RatedPowerKW: 1000, MaxLoadFraction: 1.2}},
	}
	for _, tc := range cases {
		if _, err := NewController(tc.top); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", tc.name, err)
		}
	}
}
