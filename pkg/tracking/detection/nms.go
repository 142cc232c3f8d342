package detection

import "sort"

// DefaultIoUThreshold is the overlap above which the smaller box is dropped.
const DefaultIoUThreshold = 0.5

// Suppress performs greedy non-maximum suppression keyed on box area.
//
// Candidates are ordered by area, largest first, so bigger (closer) objects
// win over smaller overlapping ones regardless of confidence. The input slice
// is not modified. Output keeps the area ordering.
func Suppress(candidates []Detection, iouThresh float64) []Detection {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]Detection, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() > sorted[j].Area()
	})

	suppressed := make([]bool, len(sorted))
	kept := make([]Detection, 0, len(sorted))

	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])

		for j := i + 1; j < len(sorted); j++ {
			if suppressed[j] {
				continue
			}
			if IoU(sorted[i], sorted[j]) > iouThresh {
				suppressed[j] = true
			}
		}
	}

	return kept
}
