package palindrome

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/seqcore/match"
	"github.com/grailbio/seqcore/seqio"
)

func TestFindInvertedRepeat(t *testing.T) {
	// "GAATTC" is its own reverse complement (EcoRI site): a perfect
	// 6-base inverted repeat with no loop.
	subject := seqio.NewView([]byte("GAATTC"))
	f := &Finder{MinArm: 3, MaxLoop: 0, Lookup: ComplementLookup(seqio.DNACodec())}
	sink := match.New(match.Ranges)
	f.Find(subject, sink)
	r := sink.Materialize()
	assert.Contains(t, r.Starts, int32(0))
	for i, st := range r.Starts {
		if st == 0 {
			assert.Equal(t, int32(6), r.Widths[i])
		}
	}
}

func TestFindPlainPalindrome(t *testing.T) {
	// RACECAR's unpaired center 'E' is a 1-wide loop.
	subject := seqio.NewView([]byte("TTRACECARGG"))
	f := &Finder{MinArm: 3, MaxLoop: 1, Lookup: Identity}
	sink := match.New(match.Ranges)
	f.Find(subject, sink)
	r := sink.Materialize()
	found := false
	for i, st := range r.Starts {
		if st == 2 && r.Widths[i] == 7 {
			found = true
		}
	}
	assert.True(t, found, "expected RACECAR at offset 2 width 7, got %+v", r)
}

func TestFindRespectsMaxLoop(t *testing.T) {
	// "AT" + loop of 4 + "AT" reverse-complement ("AT" complement is "AT").
	subject := seqio.NewView([]byte("ATGGGGAT"))
	lookup := ComplementLookup(seqio.DNACodec())

	tight := &Finder{MinArm: 2, MaxLoop: 2, Lookup: lookup}
	tightSink := match.New(match.Count)
	tight.Find(subject, tightSink)
	assert.EqualValues(t, 0, tightSink.Len())

	loose := &Finder{MinArm: 2, MaxLoop: 4, Lookup: lookup}
	looseSink := match.New(match.Count)
	loose.Find(subject, looseSink)
	assert.True(t, looseSink.Len() > 0)
}

func TestFindFullLengthInvertedRepeat(t *testing.T) {
	// "ACCTAGGT" pairs end to end (A-T, C-G, C-G, T-A): one report
	// covering the whole sequence, arm 4, loop 0.
	subject := seqio.NewView([]byte("ACCTAGGT"))
	f := &Finder{MinArm: 3, MaxLoop: 0, Lookup: ComplementLookup(seqio.DNACodec())}
	sink := match.New(match.Ranges)
	f.Find(subject, sink)
	r := sink.Materialize()
	assert.Equal(t, []int32{0}, r.Starts)
	assert.Equal(t, []int32{8}, r.Widths)
}

func TestArmLength(t *testing.T) {
	assert.Equal(t, 3, ArmLength([]byte("GAATTC"), ComplementLookup(seqio.DNACodec())))
	assert.Equal(t, 0, ArmLength([]byte("ACGT"), Identity))
	assert.Equal(t, 2, ArmLength([]byte("ACXCA"), Identity))
}
