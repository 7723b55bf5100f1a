package ranges

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32(v int32) *int32 { return &v }

func TestNarrowFixedStartEnd(t *testing.T) {
	rs := []Range{{Start: 10, Width: 20}, {Start: 1, Width: 5}}
	out, err := Narrow(rs, i32(2), i32(4), nil)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 11, Width: 3}, out[0])
	assert.Equal(t, Range{Start: 2, Width: 3}, out[1])
}

func TestNarrowNegativeEnd(t *testing.T) {
	rs := []Range{{Start: 1, Width: 10}}
	out, err := Narrow(rs, i32(1), i32(-1), nil)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 1, Width: 10}, out[0])
}

func TestNarrowTooShortErrors(t *testing.T) {
	rs := []Range{{Start: 1, Width: 2}}
	_, err := Narrow(rs, i32(1), i32(5), nil)
	assert.Error(t, err)
}

func TestNarrowRejectsZeroStart(t *testing.T) {
	rs := []Range{{Start: 1, Width: 5}}
	_, err := Narrow(rs, i32(0), i32(2), nil)
	assert.Error(t, err)
}

func TestReduceMergesOverlapping(t *testing.T) {
	rs := []Range{{Start: 1, Width: 5}, {Start: 3, Width: 10}, {Start: 20, Width: 5}}
	reduced, _ := Reduce(rs, false)
	require.Len(t, reduced, 2)
	assert.Equal(t, Range{Start: 1, Width: 12}, reduced[0])
	assert.Equal(t, Range{Start: 20, Width: 5}, reduced[1])
}

func TestReduceMergesAbutting(t *testing.T) {
	rs := []Range{{Start: 1, Width: 5}, {Start: 6, Width: 5}}
	reduced, _ := Reduce(rs, false)
	require.Len(t, reduced, 1)
	assert.Equal(t, Range{Start: 1, Width: 10}, reduced[0])
}

func TestReduceLeavesGapSeparate(t *testing.T) {
	rs := []Range{{Start: 1, Width: 5}, {Start: 7, Width: 5}}
	reduced, _ := Reduce(rs, false)
	require.Len(t, reduced, 2)
}

func TestReduceInframeStart(t *testing.T) {
	rs := []Range{{Start: 10, Width: 5}, {Start: 12, Width: 10}, {Start: 30, Width: 5}}
	reduced, inframe := Reduce(rs, true)
	require.Len(t, reduced, 2)
	assert.Equal(t, Range{Start: 10, Width: 12}, reduced[0])
	assert.Equal(t, Range{Start: 30, Width: 5}, reduced[1])
	assert.Equal(t, int32(1), inframe[0])  // start 10, offset 9
	assert.Equal(t, int32(3), inframe[1])  // start 12, offset 9
	assert.Equal(t, int32(13), inframe[2]) // start 30, offset 17
}

func TestReduceProducesDisjointSortedCover(t *testing.T) {
	f := func(raw []uint16) bool {
		rs := make([]Range, 0, len(raw)/2)
		for i := 0; i+1 < len(raw); i += 2 {
			rs = append(rs, Range{Start: int32(raw[i]%1000) + 1, Width: int32(raw[i+1]%50) + 1})
		}
		reduced, _ := Reduce(rs, false)
		for i := 1; i < len(reduced); i++ {
			prevEnd := reduced[i-1].Start + reduced[i-1].Width - 1
			if reduced[i].Start-prevEnd < 2 {
				return false // overlapping or abutting runs must have merged
			}
		}
		for _, r := range rs {
			contained := false
			for _, m := range reduced {
				if r.Start >= m.Start && r.Start+r.Width <= m.Start+m.Width {
					contained = true
					break
				}
			}
			if !contained {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestNarrowThenReduceShiftsConsistently(t *testing.T) {
	// Narrowing every range by a shared head crop then reducing gives the
	// same runs as reducing the narrowed inputs directly.
	rs := []Range{{Start: 10, Width: 8}, {Start: 14, Width: 8}, {Start: 40, Width: 8}}
	narrowed, err := Narrow(rs, i32(3), i32(8), nil)
	require.NoError(t, err)
	reduced, _ := Reduce(narrowed, false)
	require.Len(t, reduced, 2)
	assert.Equal(t, Range{Start: 12, Width: 10}, reduced[0])
	assert.Equal(t, Range{Start: 42, Width: 6}, reduced[1])
}

func TestAdjacentFromWidths(t *testing.T) {
	starts := AdjacentFromWidths([]int32{3, 5, 2})
	assert.Equal(t, []int32{1, 4, 9}, starts)
}

func TestAdjacentFromWidthsEmpty(t *testing.T) {
	assert.Empty(t, AdjacentFromWidths(nil))
}
