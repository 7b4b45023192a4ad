package entropy

import (
	"math"
	"sort"

	"github.com/mugendi/entropize/pkg/types"
)

// TopFraction returns the floor(len(blocks)×threshold) highest-entropy
// blocks, ordered descending by entropy. The sort is stable, so equal-entropy
// blocks keep their scan order. The input slice is not modified.
func TopFraction(blocks []types.EntropyBlock, threshold float64) []types.EntropyBlock {
	sorted := make([]types.EntropyBlock, len(blocks))
	copy(sorted, blocks)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Entropy > sorted[j].Entropy
	})

	n := int(math.Floor(float64(len(blocks)) * threshold))
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Centroid computes the entropy-weighted centroid of the given blocks.
// ok is false when the set is empty or its total entropy is zero; callers
// must treat that as "no point of interest" rather than divide through.
func Centroid(blocks []types.EntropyBlock) (types.Point, bool) {
	var sumX, sumY, sumE float64
	for _, b := range blocks {
		sumX += float64(b.X) * b.Entropy
		sumY += float64(b.Y) * b.Entropy
		sumE += b.Entropy
	}

	if len(blocks) == 0 || sumE == 0 {
		return types.Point{}, false
	}

	return types.Point{X: sumX / sumE, Y: sumY / sumE}, true
}
