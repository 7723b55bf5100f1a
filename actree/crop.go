package actree

import (
	"github.com/pkg/errors"

	"github.com/grailbio/seqcore/seqerr"
)

// CropSpec selects how DeriveTrustedBand reduces variable-width input
// sequences to the constant width Tree requires. Start and End are
// 1-based, possibly-negative positions (negative counts from the end); a
// nil field means "missing". The four legal (Start, End) shapes pick the
// four cropping modes below.
type CropSpec struct {
	Start *int
	End   *int
}

func intPtr(v int) *int { return &v }

// CropFixedHead builds the mode-a spec (1 <= start <= end): a fixed head,
// variable tail.
func CropFixedHead(start, end int) CropSpec { return CropSpec{Start: intPtr(start), End: intPtr(end)} }

// CropFixedTail builds the mode-b spec (start <= end <= -1): a fixed
// tail, variable head.
func CropFixedTail(start, end int) CropSpec { return CropSpec{Start: intPtr(start), End: intPtr(end)} }

// CropFromStart builds the mode-c spec (1 <= start, end missing): input
// must already be constant width; no tail is cropped.
func CropFromStart(start int) CropSpec { return CropSpec{Start: intPtr(start)} }

// CropFromEnd builds the mode-d spec (start missing, end <= -1): input
// must already be constant width; no head is cropped.
func CropFromEnd(end int) CropSpec { return CropSpec{End: intPtr(end)} }

// DeriveTrustedBand reduces a set of (possibly variable-width) input
// sequences to the constant-width "trusted band" the trie indexes. It
// returns the band bytes (slices into the input, not copies) and the
// head/tail width statistics observed.
func DeriveTrustedBand(patterns [][]byte, spec CropSpec) ([][]byte, Stats, error) {
	switch {
	case spec.Start == nil && spec.End == nil:
		return nil, Stats{}, errors.New("actree: start and end cannot both be missing")
	case spec.End == nil:
		return deriveModeC(patterns, *spec.Start)
	case spec.Start == nil:
		return deriveModeD(patterns, *spec.End)
	case *spec.Start > 0 && *spec.End > 0:
		return deriveModeA(patterns, *spec.Start, *spec.End)
	case *spec.Start < 0 && *spec.End < 0:
		return deriveModeB(patterns, *spec.Start, *spec.End)
	default:
		return nil, Stats{}, errors.New("actree: start and end must have the same sign")
	}
}

func deriveModeA(patterns [][]byte, start, end int) ([][]byte, Stats, error) {
	if end < start {
		return nil, Stats{}, errors.New("actree: end must be >= start")
	}
	width := end - start + 1
	bands := make([][]byte, len(patterns))
	stats := Stats{TailMinWidth: -1, TailMaxWidth: -1}
	for i, p := range patterns {
		if len(p) == 0 {
			return nil, Stats{}, seqerr.EmptyPattern
		}
		tailWidth := len(p) - end
		if tailWidth < 0 {
			return nil, Stats{}, seqerr.NewInputTooShort(i, end)
		}
		bands[i] = p[start-1 : start-1+width]
		if stats.TailMinWidth == -1 || tailWidth < stats.TailMinWidth {
			stats.TailMinWidth = tailWidth
		}
		if tailWidth > stats.TailMaxWidth {
			stats.TailMaxWidth = tailWidth
		}
	}
	return bands, stats, nil
}

func deriveModeB(patterns [][]byte, start, end int) ([][]byte, Stats, error) {
	if end < start {
		return nil, Stats{}, errors.New("actree: end must be >= start")
	}
	width := end - start + 1
	required := -start
	bands := make([][]byte, len(patterns))
	stats := Stats{HeadMinWidth: -1, HeadMaxWidth: -1}
	for i, p := range patterns {
		if len(p) == 0 {
			return nil, Stats{}, seqerr.EmptyPattern
		}
		headWidth := len(p) + start
		if headWidth < 0 {
			return nil, Stats{}, seqerr.NewInputTooShort(i, required)
		}
		bands[i] = p[headWidth : headWidth+width]
		if stats.HeadMinWidth == -1 || headWidth < stats.HeadMinWidth {
			stats.HeadMinWidth = headWidth
		}
		if headWidth > stats.HeadMaxWidth {
			stats.HeadMaxWidth = headWidth
		}
	}
	return bands, stats, nil
}

func deriveModeC(patterns [][]byte, start int) ([][]byte, Stats, error) {
	bands := make([][]byte, len(patterns))
	width := -1
	for i, p := range patterns {
		if len(p) == 0 {
			return nil, Stats{}, seqerr.EmptyPattern
		}
		if width == -1 {
			width = len(p) - start + 1
			if width < 1 {
				return nil, Stats{}, seqerr.NewInputTooShort(i, start)
			}
		} else if len(p) != start-1+width {
			return nil, Stats{}, seqerr.NewInconsistentWidth(i)
		}
		bands[i] = p[start-1 : start-1+width]
	}
	return bands, Stats{TailMinWidth: -1, TailMaxWidth: -1, HeadMinWidth: -1, HeadMaxWidth: -1}, nil
}

func deriveModeD(patterns [][]byte, end int) ([][]byte, Stats, error) {
	bands := make([][]byte, len(patterns))
	width := -1
	for i, p := range patterns {
		if len(p) == 0 {
			return nil, Stats{}, seqerr.EmptyPattern
		}
		if width == -1 {
			required := -end
			width = len(p) - required + 1
			if width < 1 {
				return nil, Stats{}, seqerr.NewInputTooShort(i, required)
			}
		} else if len(p) != width-end-1 {
			return nil, Stats{}, seqerr.NewInconsistentWidth(i)
		}
		bands[i] = p[0:width]
	}
	return bands, Stats{TailMinWidth: -1, TailMaxWidth: -1, HeadMinWidth: -1, HeadMaxWidth: -1}, nil
}
