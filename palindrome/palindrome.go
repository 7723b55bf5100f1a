// Package palindrome finds palindromes and inverted repeats by
// two-pointer arm expansion around every integer and half-integer center
// of a subject sequence.
//
// The expansion loop keeps running past a mismatch while an arm is still
// pending (armLen != 0) so that a report is flushed once the walk runs
// off either end of the sequence. The complement lookup reuses
// seqio.Codec's code space (complement(code) = 3-code) rather than
// introducing a second 256-entry table.
package palindrome

import (
	"github.com/grailbio/seqcore/match"
	"github.com/grailbio/seqcore/seqio"
)

// Lookup maps a subject byte to the byte its pair must equal for a
// match, returning false if the byte has no defined mapping. Identity
// finds plain palindromes; ComplementLookup finds inverted repeats.
type Lookup func(b byte) (byte, bool)

// Identity is the Lookup for plain (non-complemented) palindromes.
func Identity(b byte) (byte, bool) { return b, true }

// ComplementLookup returns the Lookup for inverted repeats under codec's
// base-code space, where complement(code) = 3-code (A<->T, C<->G).
func ComplementLookup(codec *seqio.Codec) Lookup {
	return func(b byte) (byte, bool) {
		code, ok := codec.EncodeByte(b)
		if !ok {
			return 0, false
		}
		return codec.DecodeByte(byte(3 - code)), true
	}
}

func isMatch(c1, c2 byte, lookup Lookup) bool {
	if lookup != nil {
		v, ok := lookup(c1)
		if !ok {
			return false
		}
		c1 = v
	}
	return c1 == c2
}

// Finder reports inverted (or plain) repeats in a subject sequence.
type Finder struct {
	MinArm  int
	MaxLoop int
	Lookup  Lookup
}

// findAt runs one two-pointer expansion starting from (i1, i2), reporting
// through sink whenever an arm of at least MinArm bases closes with a
// loop no wider than MaxLoop.
func (f *Finder) findAt(x []byte, i1, i2 int, sink *match.Sink) {
	n := len(x)
	maxLoopLen1 := f.MaxLoop + 1
	armLen := 0
	for {
		validIndices := i1 >= 0 && i2 < n
		if !((validIndices && i2-i1 <= maxLoopLen1) || armLen != 0) {
			break
		}
		matched := false
		if validIndices && isMatch(x[i1], x[i2], f.Lookup) {
			armLen++
			matched = true
		}
		if !matched {
			if armLen >= f.MinArm {
				// i1 has stepped one position past the arm, so the
				// 0-based start is i1+1 and the report spans both
				// arms plus the loop.
				sink.Report(int32(i1+1), int32(i2-i1-1))
			}
			armLen = 0
		}
		i1--
		i2++
	}
}

// Find scans every center of subject (each integer position, for odd-
// length palindromes, and each position-plus-half, for even-length
// ones), reporting matches through sink.
func (f *Finder) Find(subject seqio.View, sink *match.Sink) {
	x := subject.Bytes()
	for n := 0; n < len(x); n++ {
		f.findAt(x, n-1, n+1, sink) // centered on n
		f.findAt(x, n, n+1, sink)   // centered on n+0.5
	}
}

// ArmLength returns the length of the longest complementary (or, with
// Identity, identical) prefix-suffix run in seq: the longest i such that
// seq[0:i] pairs with seq[len(seq)-i:] under lookup.
func ArmLength(seq []byte, lookup Lookup) int {
	i1, i2 := 0, len(seq)-1
	for i1 < i2 && isMatch(seq[i1], seq[i2], lookup) {
		i1++
		i2--
	}
	return i1
}
