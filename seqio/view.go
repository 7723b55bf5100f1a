package seqio

import (
	"github.com/dgryski/go-farm"
	"github.com/grailbio/seqcore/seqerr"
)

// View is an immutable, zero-copy reference to a span of sequence bytes.
// The backing bytes are owned by whatever external store constructed the
// View (e.g. a FASTA reader); View itself never copies or retains
// anything beyond the slice header.
type View struct {
	b []byte
}

// NewView wraps b without copying it.
func NewView(b []byte) View { return View{b: b} }

// Len returns the number of bytes in the view.
func (v View) Len() int { return len(v.b) }

// Bytes returns the view's backing bytes. Callers must not mutate them.
func (v View) Bytes() []byte { return v.b }

// At returns the byte at position i.
func (v View) At(i int) byte { return v.b[i] }

// Slice returns the sub-view [start, end); it panics if the bounds are
// invalid, consistent with Go slicing semantics. Caller-supplied view
// coordinates should be validated with CheckBounds first.
func (v View) Slice(start, end int) View { return View{b: v.b[start:end]} }

// CheckBounds validates that [start, start+width) lies within v,
// returning seqerr.ViewOutOfBounds otherwise. Matchers and scanners call
// this before touching a caller-supplied subject view.
func (v View) CheckBounds(start, width int) error {
	if start < 0 || width < 0 || start+width > v.Len() {
		return seqerr.NewViewOutOfBounds(start, width, v.Len())
	}
	return nil
}

// Set is a homogeneous, ordered collection of sequence views with O(1)
// random access: one concatenated buffer plus parallel start/width
// arrays.
type Set struct {
	buf    []byte
	starts []int32
	widths []int32
}

// NewSet builds a Set over a shared buffer with explicit per-element
// start/width arrays. starts and widths must have equal length; widths
// entries must be >= 0 and starts+widths must not exceed len(buf).
func NewSet(buf []byte, starts, widths []int32) Set {
	if len(starts) != len(widths) {
		seqerr.Invariant("seqio.Set", "starts and widths must have equal length")
	}
	return Set{buf: buf, starts: starts, widths: widths}
}

// BuildSet concatenates a slice of byte slices into a single Set buffer.
func BuildSet(seqs [][]byte) Set {
	total := 0
	for _, s := range seqs {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	starts := make([]int32, len(seqs))
	widths := make([]int32, len(seqs))
	for i, s := range seqs {
		starts[i] = int32(len(buf))
		widths[i] = int32(len(s))
		buf = append(buf, s...)
	}
	return NewSet(buf, starts, widths)
}

// Len returns the number of sequences in the set.
func (s Set) Len() int { return len(s.starts) }

// View returns the i-th sequence as a View into the shared buffer.
func (s Set) View(i int) View {
	start := s.starts[i]
	width := s.widths[i]
	return View{b: s.buf[start : start+width]}
}

// Cache returns a precomputed []View for every element, for hot loops
// that would otherwise recompute slice bounds on every access.
func (s Set) Cache() []View {
	out := make([]View, s.Len())
	for i := range out {
		out[i] = s.View(i)
	}
	return out
}

// KmerHash returns a fast, non-cryptographic 64-bit hash of v's bytes.
// actree uses this to detect duplicate dictionary patterns in O(1)
// expected time before falling back to an exact byte comparison.
func KmerHash(v View) uint64 {
	return farm.Hash64WithSeed(v.Bytes(), 0)
}
