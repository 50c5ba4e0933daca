package dynamo

// Pair is an unordered body index pair with I < J.
type Pair struct {
	I, J uint32
}

// PairIndex enumerates every distinct body pair. It is built once and never
// mutated; devices upload it in this order.
type PairIndex []Pair

// PairCount returns n(n-1)/2, or 0 for n < 2.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// BuildPairs enumerates pairs row-major: i ascending, then j ascending.
func BuildPairs(n int) PairIndex {
	pairs := make(PairIndex, 0, PairCount(n))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Pair{I: uint32(i), J: uint32(j)})
		}
	}
	return pairs
}

// Flatten returns the pairs as consecutive (i, j) words, the layout device
// buffers expect.
func (p PairIndex) Flatten() []uint32 {
	out := make([]uint32, 0, len(p)*2)
	for _, pr := range p {
		out = append(out, pr.I, pr.J)
	}
	return out
}
