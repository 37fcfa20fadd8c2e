package metrics

import (
	"sync"

	"github.com/statnotes/statnotes/core/parallel"
	"github.com/statnotes/statnotes/pkg/errors"
)

// Pair counting is O(n²); below this many subjects the goroutine overhead
// outweighs the parallel scan.
const concordanceParallelThreshold = 512

// ConcordanceIndex computes Harrell's C-statistic for right-censored
// survival data. risk is a per-subject risk score where higher means
// earlier expected failure. A pair (i, j) is comparable when the subject
// with the shorter time had the event. Concordant pairs have the higher
// risk on the shorter time; tied risks count half.
//
// With no comparable pairs the statistic is undefined; a warning is emitted
// and 0.5 returned.
func ConcordanceIndex(times []float64, events []bool, risk []float64) (float64, error) {
	n := len(times)
	if n == 0 {
		return 0, errors.NewValueError("ConcordanceIndex", "empty input")
	}
	if len(events) != n {
		return 0, errors.NewDimensionError("ConcordanceIndex", n, len(events), 0)
	}
	if len(risk) != n {
		return 0, errors.NewDimensionError("ConcordanceIndex", n, len(risk), 0)
	}

	var mu sync.Mutex
	var concordant, tied, comparable float64
	parallel.ParallelizeWithThreshold(n, concordanceParallelThreshold, func(start, end int) {
		var localConcordant, localTied, localComparable float64
		for i := start; i < end; i++ {
			if !events[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				// i had the event; j survived past i's time (or was censored
				// later, or had its event later).
				if times[j] > times[i] || (times[j] == times[i] && !events[j]) {
					localComparable++
					switch {
					case risk[i] > risk[j]:
						localConcordant++
					case risk[i] == risk[j]:
						localTied++
					}
				}
			}
		}
		mu.Lock()
		concordant += localConcordant
		tied += localTied
		comparable += localComparable
		mu.Unlock()
	})

	if comparable == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("concordance", "no comparable pairs", 0.5))
		return 0.5, nil
	}
	return (concordant + 0.5*tied) / comparable, nil
}
