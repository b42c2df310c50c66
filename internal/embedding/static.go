package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Static is a deterministic embedder for tests and offline use. It maps
// each token to a pseudo-random direction derived from its hash and
// sums them, so identical texts embed identically and texts sharing
// words land measurably closer than unrelated ones. No model, no I/O.
type Static struct {
	// Dim is the embedding dimension; the zero value defaults to 64.
	Dim int
}

// Generate returns a unit-length vector of the configured dimension.
func (s Static) Generate(_ context.Context, text string) ([]float32, error) {
	dim := s.Dim
	if dim <= 0 {
		dim = 64
	}

	vec := make([]float64, dim)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(token)) //nolint:errcheck // hash writes cannot fail.
		seed := h.Sum64()

		for i := range vec {
			// splitmix64 step per component keeps tokens orthogonal-ish.
			seed += 0x9e3779b97f4a7c15
			z := seed
			z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
			z = (z ^ (z >> 27)) * 0x94d049bb133111eb
			z ^= z >> 31

			vec[i] += float64(int64(z)) / math.MaxInt64
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}

	out := make([]float32, dim)

	if norm == 0 {
		return out, nil
	}

	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}

	return out, nil
}
