// Package ranges implements IRanges-style range arithmetic over 1-based,
// closed-interval (start, width) pairs: narrowing a batch of ranges by a
// shared user-specified (start, end, width) request, reducing a set of
// possibly-overlapping ranges to their disjoint union, and deriving
// adjacent ranges from a list of widths.
package ranges

import (
	"sort"

	"github.com/grailbio/seqcore/seqerr"
)

// Range is a 1-based closed-interval [Start, Start+Width-1], the IRanges
// convention, deliberately distinct from align.Range's 0-based half-open
// spans since this package mirrors R's IRanges coordinate system exactly.
type Range struct {
	Start, Width int32
}

// resolveStartEnd translates a user-specified (start, end, width) triple,
// where nil means "NA", into concrete 1-based start/end values, per
// uSEW_to_StartEnd. When width is given, exactly one of start/end must be
// nil. When width is nil, either or both of start/end may be nil: a nil
// start defaults to 1 and a nil end defaults to -1.
func resolveStartEnd(start, end, width *int32) (s, e int32, err error) {
	if start != nil && *start == 0 {
		return 0, 0, seqerr.NewInvalidRangeSpec("start must be >= 1, <= -1, or nil")
	}
	if end != nil && *end == 0 {
		return 0, 0, seqerr.NewInvalidRangeSpec("end must be >= 1, <= -1, or nil")
	}
	switch {
	case width == nil:
		if start == nil {
			s = 1
		} else {
			s = *start
		}
		if end == nil {
			e = -1
		} else {
			e = *end
		}
		if (e > 0 || s < 0) && e < s {
			return 0, 0, seqerr.NewInvalidRangeSpec("invalid (start, end) combination")
		}
	case *width < 0:
		return 0, 0, seqerr.NewInvalidRangeSpec("width must be >= 0")
	case (start == nil) == (end == nil):
		return 0, 0, seqerr.NewInvalidRangeSpec("exactly one of start or end must be nil when width is given")
	case start == nil:
		if *end > 0 && *end < *width {
			return 0, 0, seqerr.NewInvalidRangeSpec("invalid (end, width) combination")
		}
		s = *end - *width + 1
		e = *end
	default:
		if *start < 0 && -*start < *width {
			return 0, 0, seqerr.NewInvalidRangeSpec("invalid (start, width) combination")
		}
		e = *start + *width - 1
		s = *start
	}
	return s, e, nil
}

// Narrow derives, for every range in rs, the sub-range described by a
// shared (start, end, width) request (1-based; a negative value counts
// from the end of each individual range, per IRanges' uSEW convention).
// A non-nil width needs exactly one of start/end nil; with a nil width,
// nil start/end default to 1 and -1 (see resolveStartEnd).
func Narrow(rs []Range, start, end, width *int32) ([]Range, error) {
	s, e, err := resolveStartEnd(start, end, width)
	if err != nil {
		return nil, err
	}
	out := make([]Range, len(rs))
	for i, r := range rs {
		var shift1, shift2 int32
		if s > 0 {
			shift1 = s - 1
		} else {
			shift1 = s + r.Width
		}
		if e < 0 {
			shift2 = e + 1
		} else {
			shift2 = e - r.Width
		}
		newWidth := r.Width - shift1 + shift2
		if shift1 < 0 || shift2 > 0 || newWidth < 0 {
			return nil, seqerr.NewNarrowingUnderflow(i)
		}
		out[i] = Range{Start: r.Start + shift1, Width: newWidth}
	}
	return out, nil
}

// Reduce merges rs into its disjoint union, the way reduce_ranges folds
// overlapping or abutting (gap <= 0) ranges into a single run while
// scanning them in start order. When withInframeStart is true it also
// returns, for each original range (in rs' original order), its start
// with every gap to its left removed, including the gap before the first
// run: its 1-based position in the gap-free concatenation of the reduced
// runs (add_to_reduced_ranges' inframe_offset accumulator).
func Reduce(rs []Range, withInframeStart bool) (reduced []Range, inframeStart []int32) {
	order := make([]int, len(rs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rs[order[a]].Start < rs[order[b]].Start })

	if withInframeStart {
		inframeStart = make([]int32, len(rs))
	}
	var maxEnd, inframeOffset int32
	for _, j := range order {
		start, width := rs[j].Start, rs[j].Width
		end := start + width - 1
		switch {
		case len(reduced) == 0:
			reduced = append(reduced, Range{Start: start, Width: width})
			inframeOffset = start - 1
			maxEnd = end
		case start-maxEnd-1 > 0:
			gap := start - maxEnd - 1
			reduced = append(reduced, Range{Start: start, Width: width})
			inframeOffset += gap
			maxEnd = end
		case end > maxEnd:
			reduced[len(reduced)-1].Width += end - maxEnd
			maxEnd = end
		}
		if withInframeStart {
			inframeStart[j] = start - inframeOffset
		}
	}
	return reduced, inframeStart
}

// AdjacentFromWidths returns the 1-based start positions of len(widths)
// ranges laid end to end with no gaps, per int_to_adjacent_ranges.
func AdjacentFromWidths(widths []int32) []int32 {
	starts := make([]int32, len(widths))
	if len(widths) >= 1 {
		starts[0] = 1
	}
	for i := 1; i < len(widths); i++ {
		starts[i] = starts[i-1] + widths[i-1]
	}
	return starts
}
