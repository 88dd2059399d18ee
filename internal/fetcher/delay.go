package fetcher

import (
	"math/rand"
	"time"
)

// RandomDelay picks a delay uniformly among the whole multiples of unit in
// [lo, hi]. With lo=1s, hi=6s and unit=1s it returns one of 1s..6s.
func RandomDelay(rng *rand.Rand, lo, hi, unit time.Duration) time.Duration {
	if unit <= 0 || hi <= lo {
		return lo
	}
	steps := int64((hi - lo) / unit)
	return lo + time.Duration(rng.Int63n(steps+1))*unit
}
