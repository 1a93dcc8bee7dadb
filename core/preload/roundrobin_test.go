package preload

import "testing"

func TestRoundRobinFairSplit(t *testing.T) {
	demand := map[string]int{"A": 5, "B": 3}
	caps := map[string]int{"A": 8, "B": 8}

	got := roundRobin(demand, caps, 6)
	if got["A"] != 3 || got["B"] != 3 {
		t.Fatalf("allocation = %v, want A:3 B:3", got)
	}
}

func TestRoundRobinRespectsHardwareCap(t *testing.T) {
	demand := map[string]int{"A": 10, "B": 10}
	caps := map[string]int{"A": 2, "B": 8}

	got := roundRobin(demand, caps, 8)
	if got["A"] != 2 || got["B"] != 6 {
		t.Fatalf("allocation = %v, want A:2 B:6", got)
	}
}

func TestRoundRobinStopsWhenDemandMet(t *testing.T) {
	demand := map[string]int{"A": 1, "B": 2}
	caps := map[string]int{"A": 8, "B": 8}

	got := roundRobin(demand, caps, 100)
	if got["A"] != 1 || got["B"] != 2 {
		t.Fatalf("allocation = %v, want A:1 B:2", got)
	}
}

func TestRoundRobinDeterministicBisection(t *testing.T) {
	// Cap 3 bisects the second round; ID order means A gets the extra plate.
	demand := map[string]int{"B": 2, "A": 2}
	caps := map[string]int{"A": 8, "B": 8}

	for i := 0; i < 10; i++ {
		got := roundRobin(demand, caps, 3)
		if got["A"] != 2 || got["B"] != 1 {
			t.Fatalf("allocation = %v, want A:2 B:1 every time", got)
		}
	}
}

func TestRoundRobinZeroCap(t *testing.T) {
	got := roundRobin(map[string]int{"A": 5}, map[string]int{"A": 5}, 0)
	if len(got) != 0 {
		t.Fatalf("allocation = %v, want empty", got)
	}
}
