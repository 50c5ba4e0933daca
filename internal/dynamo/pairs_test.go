package dynamo

import "testing"

func TestBuildPairs_Four(t *testing.T) {
	pairs := BuildPairs(4)
	expected := PairIndex{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

	if len(pairs) != len(expected) {
		t.Fatalf("expected %d pairs, got %d", len(expected), len(pairs))
	}
	for i, p := range pairs {
		if p != expected[i] {
			t.Errorf("pair %d: expected %v, got %v", i, expected[i], p)
		}
	}
}

func TestBuildPairs_Count(t *testing.T) {
	for n := 0; n <= 40; n++ {
		pairs := BuildPairs(n)
		want := n * (n - 1) / 2
		if n < 2 {
			want = 0
		}
		if len(pairs) != want {
			t.Errorf("n=%d: expected %d pairs, got %d", n, want, len(pairs))
		}
		if PairCount(n) != want {
			t.Errorf("n=%d: PairCount = %d, want %d", n, PairCount(n), want)
		}

		seen := make(map[Pair]bool, len(pairs))
		for _, p := range pairs {
			if p.I >= p.J {
				t.Fatalf("n=%d: pair %v is not ordered", n, p)
			}
			if int(p.J) >= n {
				t.Fatalf("n=%d: pair %v out of range", n, p)
			}
			if seen[p] {
				t.Fatalf("n=%d: duplicate pair %v", n, p)
			}
			seen[p] = true
		}
	}
}

func TestPairIndex_Flatten(t *testing.T) {
	flat := BuildPairs(3).Flatten()
	expected := []uint32{0, 1, 0, 2, 1, 2}
	if len(flat) != len(expected) {
		t.Fatalf("expected %d words, got %d", len(expected), len(flat))
	}
	for i := range flat {
		if flat[i] != expected[i] {
			t.Errorf("word %d: expected %d, got %d", i, expected[i], flat[i])
		}
	}
}
