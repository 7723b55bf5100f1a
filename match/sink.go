// Package match implements the reusable match-reporting substrate shared
// by every pattern-matching component in seqcore (SimpleMatchers, PWM
// scanning, palindrome finding, and ACTree scanning): a Sink that
// either just counts matches or collects their (start, width) ranges,
// with a coordinate-shift register for view-relative scans.
//
// When scanning views of a larger subject, callers set Shift to each
// view's offset before scanning it, so reported starts land in subject
// coordinates and results concatenate in view order.
package match

// Mode selects what a Sink retains across a scan.
type Mode int

const (
	// Count retains only a running count and the shift register.
	Count Mode = iota
	// Ranges retains every reported (start, width) pair.
	Ranges
)

// Sink collects matches reported by a single scan. It is created per
// scan and drained once via Materialize.
type Sink struct {
	mode   Mode
	count  int64
	shift  int32
	starts []int32
	widths []int32
}

// New creates a Sink in the given mode.
func New(mode Mode) *Sink {
	s := &Sink{}
	s.Init(mode)
	return s
}

// Init resets the sink's buffers and shift register and switches it to
// mode. It is safe to call on a previously-used Sink to reuse its
// allocations across a batch of scans.
func (s *Sink) Init(mode Mode) {
	s.mode = mode
	s.count = 0
	s.shift = 0
	s.starts = s.starts[:0]
	s.widths = s.widths[:0]
}

// Shift sets the coordinate-shift register: every subsequent Report call
// adds k to the reported start. Callers scanning a view of a larger
// subject set this to the view's offset before each scan.
func (s *Sink) Shift(k int32) {
	s.shift = k
}

// Report records a match at [start, start+width) in the pre-shift
// coordinate space. In Count mode only the counter is incremented; in
// Ranges mode the shifted (start, width) pair is appended.
func (s *Sink) Report(start, width int32) {
	s.count++
	if s.mode == Ranges {
		s.starts = append(s.starts, start+s.shift)
		s.widths = append(s.widths, width)
	}
}

// DropCurrent discards all matches accumulated so far without resetting
// the shift register, used between independent scans within a single
// vectorized call (e.g. vmatchPattern over a SeqSet) where the caller
// wants per-element results rather than one concatenated stream.
func (s *Sink) DropCurrent() {
	s.count = 0
	s.starts = s.starts[:0]
	s.widths = s.widths[:0]
}

// Result is the materialized form of a Sink: either a count, or parallel
// start/width arrays.
type Result struct {
	Mode   Mode
	Count  int64
	Starts []int32
	Widths []int32
}

// Materialize returns the collected result. In Count mode Starts and
// Widths are nil. In Ranges mode the returned slices alias the Sink's
// internal buffers; callers that intend to keep scanning the same Sink
// should copy them first.
func (s *Sink) Materialize() Result {
	r := Result{Mode: s.mode, Count: s.count}
	if s.mode == Ranges {
		r.Starts, r.Widths = s.starts, s.widths
	}
	return r
}

// Len returns the number of matches reported so far (valid in either mode).
func (s *Sink) Len() int64 { return s.count }
