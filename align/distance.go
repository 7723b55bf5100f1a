package align

import (
	"context"

	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

// AlignDistance scores every pair in set under a's scoring parameters and
// returns the lower triangle of the resulting N(N-1)/2 score matrix,
// flattened row-major: element (i, j) for j < i lives at index
// i*(i-1)/2+j. qualities, if non-nil, must have one entry per element of
// set (recycled per-sequence the same way Align recycles a scalar
// quality). Cancellation is checked once per outer sequence.
func (a *Aligner) AlignDistance(ctx context.Context, set seqio.Set, qualities [][]byte) ([]float64, error) {
	n := set.Len()
	out := make([]float64, n*(n-1)/2)
	views := set.Cache()
	quality := func(i int) []byte {
		if qualities == nil {
			return nil
		}
		return qualities[i]
	}
	for i := 1; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, seqerr.Cancelled
		}
		for j := 0; j < i; j++ {
			score, err := a.Score(ctx, views[i], views[j], quality(i), quality(j))
			if err != nil {
				return nil, err
			}
			out[i*(i-1)/2+j] = score
		}
	}
	return out, nil
}
