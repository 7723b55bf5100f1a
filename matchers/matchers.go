// Package matchers implements single-pattern scanning over nucleotide
// sequences: naive exact and inexact sweeps, Boyer-Moore with
// bad-character and good-suffix shift tables, and a bit-parallel shift-or
// matcher. All four share the scan(pattern, subject, options, sink)
// signature, and ScanViews/ScanSet lift any of them over views of a
// larger subject or over a whole sequence set.
//
// Matching is either literal ("fixed") or IUPAC-aware per side: an
// unfixed side expands each letter to its compatible base set, and two
// letters match when those sets intersect.
package matchers

import (
	"github.com/grailbio/base/log"

	"github.com/grailbio/seqcore/match"
	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

// Options configures a scan. Codec supplies the IUPAC ambiguity table used
// whenever FixedPattern or FixedSubject is false; it may be nil when both
// are true, since the comparator then never consults ambiguity masks.
type Options struct {
	Codec        *seqio.Codec
	FixedPattern bool
	FixedSubject bool
	MaxMismatch  int
}

// compatible decides whether one pattern byte matches one subject byte
// under the four fixed/unfixed combinations: literal equality when both
// sides are fixed, ambiguity-mask intersection otherwise.
func compatible(o Options, p, s byte) bool {
	switch {
	case o.FixedPattern && o.FixedSubject:
		return p == s
	case o.FixedPattern && !o.FixedSubject:
		pm, ok := o.Codec.Ambiguity(p)
		if !ok {
			pm = 0
		}
		sm, _ := o.Codec.Ambiguity(s)
		return pm&sm != 0
	case !o.FixedPattern && o.FixedSubject:
		pm, _ := o.Codec.Ambiguity(p)
		sm, ok := o.Codec.Ambiguity(s)
		if !ok {
			sm = 0
		}
		return pm&sm != 0
	default:
		pm, _ := o.Codec.Ambiguity(p)
		sm, _ := o.Codec.Ambiguity(s)
		return pm&sm != 0
	}
}

// Naive performs exact sliding-window matching: a memcmp-equivalent byte
// comparison at every shift, reporting (start, len(pattern)) on a hit.
func Naive(pattern, subject seqio.View, o Options, sink *match.Sink) error {
	p, s := pattern.Bytes(), subject.Bytes()
	m, n := len(p), len(s)
	if m == 0 {
		return seqerr.EmptyPattern
	}
	for i := 0; i+m <= n; i++ {
		ok := true
		for j := 0; j < m; j++ {
			if !compatible(o, p[j], s[i+j]) {
				ok = false
				break
			}
		}
		if ok {
			sink.Report(int32(i), int32(m))
		}
	}
	return nil
}

// NaiveInexact sweeps every shift from max(-maxMM, 1-|P|) to
// |S|-|P|+maxMM, counting mismatches over the full pattern width
// (positions that fall outside the subject count as mismatches), and
// reports the shift when the count is within budget. A reported range may
// hang off either end of the subject when the mismatch budget covers the
// overhang.
func NaiveInexact(pattern, subject seqio.View, o Options, sink *match.Sink) error {
	p, s := pattern.Bytes(), subject.Bytes()
	m, n := len(p), len(s)
	if m == 0 {
		return seqerr.EmptyPattern
	}
	maxMM := o.MaxMismatch
	lo := -maxMM
	if m <= maxMM {
		lo = 1 - m
	}
	hi := n - m + maxMM
	for shift := lo; shift <= hi; shift++ {
		mismatches := 0
		for j := 0; j < m && mismatches <= maxMM; j++ {
			idx := shift + j
			if idx < 0 || idx >= n {
				mismatches++
				continue
			}
			if !compatible(o, p[j], s[idx]) {
				mismatches++
			}
		}
		if mismatches <= maxMM {
			sink.Report(int32(shift), int32(m))
		}
	}
	return nil
}

// BoyerMoore performs exact matching using bad-character and good-suffix
// shift tables built once from pattern. It conservatively falls back to
// NaiveInexact whenever either side is unfixed or the caller allows
// mismatches, since the classical shift tables assume exact byte
// equality.
func BoyerMoore(pattern, subject seqio.View, o Options, sink *match.Sink) error {
	if !o.FixedPattern || !o.FixedSubject || o.MaxMismatch > 0 {
		log.Debug.Printf("matchers.BoyerMoore: falling back to NaiveInexact (fixedP=%v fixedS=%v maxMM=%d)",
			o.FixedPattern, o.FixedSubject, o.MaxMismatch)
		return NaiveInexact(pattern, subject, o, sink)
	}
	p, s := pattern.Bytes(), subject.Bytes()
	m, n := len(p), len(s)
	if m == 0 {
		return seqerr.EmptyPattern
	}
	if m > n {
		return nil
	}
	bad := badCharTable(p)
	good := goodSuffixTable(p)

	i := 0
	for i <= n-m {
		j := m - 1
		for j >= 0 && p[j] == s[i+j] {
			j--
		}
		if j < 0 {
			sink.Report(int32(i), int32(m))
			i += good[0]
			continue
		}
		bcShift := j - bad[s[i+j]]
		if bcShift < 1 {
			bcShift = 1
		}
		gsShift := good[j+1]
		if bcShift > gsShift {
			i += bcShift
		} else {
			i += gsShift
		}
	}
	return nil
}

// badCharTable returns, for every byte value, the rightmost index at
// which it occurs in p, or -1 if it does not occur.
func badCharTable(p []byte) [256]int {
	var table [256]int
	for i := range table {
		table[i] = -1
	}
	for i, b := range p {
		table[b] = i
	}
	return table
}

// goodSuffixTable builds the strong good-suffix shift table, indexed 0..m
// (entry m is the shift to use after a full match).
func goodSuffixTable(p []byte) []int {
	m := len(p)
	shift := make([]int, m+1)
	border := make([]int, m+1)

	i, j := m, m+1
	border[i] = j
	for i > 0 {
		for j <= m && p[i-1] != p[j-1] {
			if shift[j] == 0 {
				shift[j] = j - i
			}
			j = border[j]
		}
		i--
		j--
		border[i] = j
	}

	j = border[0]
	for i := 0; i <= m; i++ {
		if shift[i] == 0 {
			shift[i] = j
		}
		if i == j {
			j = border[j]
		}
	}
	return shift
}

// shiftOrMaxWidth is the largest pattern length ShiftOr handles natively:
// the state word is a uint64, with one bit of headroom kept clear to
// simplify the top-bit test.
const shiftOrMaxWidth = 63

// ShiftOr performs bit-parallel matching with up to 3 substitutions, using
// the classical Baeza-Yates/Navarro recurrence
//
//	R0_i = (R0_{i-1} << 1) | B[c]
//	Rj_i = ((Rj_{i-1} << 1) | B[c]) & (Rj-1_{i-1} << 1)        for j = 1..k
//
// where bit p of Rj is 0 iff the pattern's first p+1 characters match the
// text ending at the current position with at most j substitutions.
// Patterns wider than shiftOrMaxWidth (63), or mismatch budgets above 3,
// fall back to NaiveInexact.
func ShiftOr(pattern, subject seqio.View, o Options, sink *match.Sink) error {
	p, s := pattern.Bytes(), subject.Bytes()
	m, n := len(p), len(s)
	if m == 0 {
		return seqerr.EmptyPattern
	}
	if m > shiftOrMaxWidth || o.MaxMismatch > 3 {
		log.Debug.Printf("matchers.ShiftOr: falling back to NaiveInexact (width=%d maxMM=%d)", m, o.MaxMismatch)
		return NaiveInexact(pattern, subject, o, sink)
	}
	k := o.MaxMismatch
	var mask [256]uint64
	for i := range mask {
		mask[i] = ^uint64(0)
	}
	for b := 0; b < 256; b++ {
		for i := 0; i < m; i++ {
			if compatible(o, p[i], byte(b)) {
				mask[b] &^= 1 << uint(i)
			}
		}
	}
	matchBit := uint64(1) << uint(m-1)

	r := make([]uint64, k+1)
	for j := range r {
		r[j] = ^uint64(0)
	}
	for i := 0; i < n; i++ {
		b := mask[s[i]]
		prev := r[0]
		r[0] = (r[0] << 1) | b
		for j := 1; j <= k; j++ {
			next := ((r[j] << 1) | b) & (prev << 1)
			prev = r[j]
			r[j] = next
		}
		if r[k]&matchBit == 0 {
			start := i - m + 1
			sink.Report(int32(start), int32(m))
		}
	}
	return nil
}

// Func is the common scan signature the four matchers share, so that
// ScanViews and ScanSet can lift any of them.
type Func func(pattern, subject seqio.View, o Options, sink *match.Sink) error

// ScanViews runs scan once per (start, width) view of subject, setting
// the sink's shift to each view's offset first so reported starts land in
// subject coordinates, and concatenating results in view order. A view
// extending past subject fails with seqerr.ViewOutOfBounds before any
// scanning of that view happens.
func ScanViews(scan Func, pattern, subject seqio.View, starts, widths []int32, o Options, sink *match.Sink) error {
	if len(starts) != len(widths) {
		seqerr.Invariant("matchers", "ScanViews requires parallel starts/widths")
	}
	for i := range starts {
		off, w := int(starts[i]), int(widths[i])
		if err := subject.CheckBounds(off, w); err != nil {
			return err
		}
		sink.Shift(starts[i])
		if err := scan(pattern, subject.Slice(off, off+w), o, sink); err != nil {
			return err
		}
	}
	return nil
}

// ScanSet runs scan independently against every element of set and
// returns one materialized result per element, draining the shared sink
// between elements so each result stands alone.
func ScanSet(scan Func, pattern seqio.View, set seqio.Set, o Options, sink *match.Sink) ([]match.Result, error) {
	out := make([]match.Result, 0, set.Len())
	for _, view := range set.Cache() {
		if err := scan(pattern, view, o, sink); err != nil {
			return nil, err
		}
		r := sink.Materialize()
		out = append(out, match.Result{
			Mode:   r.Mode,
			Count:  r.Count,
			Starts: append([]int32(nil), r.Starts...),
			Widths: append([]int32(nil), r.Widths...),
		})
		sink.DropCurrent()
	}
	return out, nil
}
