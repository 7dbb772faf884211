package scoring

import (
	"sort"

	"github.com/coachkit/checkin-engine/internal/apperrors"
)

// ValidateBands checks that the bands, sorted by MinScore, partition [0,100]
// with no gaps and no overlaps. Templates violating this are unusable.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return apperrors.NewConfigurationError("template has no scoring bands")
	}

	sorted := sortedBands(bands)

	for i, b := range sorted {
		if b.MinScore >= b.MaxScore {
			return apperrors.NewConfigurationErrorf(
				"band %q has empty range [%v, %v)", b.Name, b.MinScore, b.MaxScore)
		}
		if i == 0 {
			if b.MinScore != 0 {
				return apperrors.NewConfigurationErrorf(
					"bands leave a gap below %v: the lowest band must start at 0", b.MinScore)
			}
			continue
		}
		prev := sorted[i-1]
		if b.MinScore < prev.MaxScore {
			return apperrors.NewConfigurationErrorf(
				"bands %q and %q overlap at %v", prev.Name, b.Name, b.MinScore)
		}
		if b.MinScore > prev.MaxScore {
			return apperrors.NewConfigurationErrorf(
				"bands %q and %q leave a gap between %v and %v",
				prev.Name, b.Name, prev.MaxScore, b.MinScore)
		}
	}

	if top := sorted[len(sorted)-1]; top.MaxScore != 100 {
		return apperrors.NewConfigurationErrorf(
			"the top band %q must end at 100, not %v", top.Name, top.MaxScore)
	}

	return nil
}

// classify maps a score into the band whose [MinScore, MaxScore) contains it,
// with the top band closed at 100. Bands are pre-validated at save time, so
// this is a single bounded lookup with no error path.
func classify(score float64, bands []Band) Band {
	sorted := sortedBands(bands)

	// sort.Search finds the first band ending above the score, which for a
	// valid partition is exactly the half-open interval containing it.
	i := sort.Search(len(sorted), func(i int) bool {
		return score < sorted[i].MaxScore
	})
	if i == len(sorted) {
		// Only reachable at the inclusive top boundary.
		i = len(sorted) - 1
	}
	return sorted[i]
}

func sortedBands(bands []Band) []Band {
	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinScore < sorted[j].MinScore
	})
	return sorted
}
