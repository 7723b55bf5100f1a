// Package seqio provides the zero-copy data model shared by every seqcore
// component: a ByteCodec mapping ASCII nucleotide letters to compact 0..3
// internal codes (plus an IUPAC ambiguity mask table), and View/Set types
// giving O(1) random access into borrowed byte slices.
//
// Lookup tables are dense 256-entry arrays indexed by raw byte value,
// rather than a switch or a map, so encoding a buffer is a tight loop
// with no branch misprediction.
package seqio

import (
	"github.com/grailbio/seqcore/seqerr"
)

// Alphabet selects which of the two differences between DNA and RNA
// ('T' vs 'U') a Codec encodes.
type Alphabet int

const (
	// DNA maps 'T'/'t' to the thymine code.
	DNA Alphabet = iota
	// RNA maps 'U'/'u' to the same code slot DNA gives thymine.
	RNA
)

// naBase is the sentinel stored in Codec.encode for a byte that is not a
// member of the alphabet.
const naBase int8 = -1

// Primary base codes, fixed regardless of alphabet: A=0, C=1, G=2, T/U=3.
// These double as PWM row indices and as trie link tags, so they are
// exported.
const (
	CodeA = 0
	CodeC = 1
	CodeG = 2
	CodeT = 3
)

// iupacMasks maps each IUPAC ambiguity letter to the subset of {A,C,G,T}
// it denotes, one bit per primary base code. The masks are unrelated to
// the primary 0..3 codes themselves.
var iupacMasks = map[byte]uint8{
	'A': 1 << CodeA,
	'C': 1 << CodeC,
	'G': 1 << CodeG,
	'T': 1 << CodeT,
	'U': 1 << CodeT,
	'R': 1<<CodeA | 1<<CodeG,
	'Y': 1<<CodeC | 1<<CodeT,
	'S': 1<<CodeC | 1<<CodeG,
	'W': 1<<CodeA | 1<<CodeT,
	'K': 1<<CodeG | 1<<CodeT,
	'M': 1<<CodeA | 1<<CodeC,
	'B': 1<<CodeC | 1<<CodeG | 1<<CodeT,
	'D': 1<<CodeA | 1<<CodeG | 1<<CodeT,
	'H': 1<<CodeA | 1<<CodeC | 1<<CodeT,
	'V': 1<<CodeA | 1<<CodeC | 1<<CodeG,
	'N': 1<<CodeA | 1<<CodeC | 1<<CodeG | 1<<CodeT,
}

// Codec is an immutable encode/decode/ambiguity table for one alphabet.
// It is the only piece of shared state in the core, and even that is
// immutable once built; DNACodec/RNACodec below are lazily-initialized
// singletons.
type Codec struct {
	alphabet Alphabet
	encode   [256]int8
	decode   [4]byte
	ambig    [256]uint8
}

// New builds a Codec for the given alphabet.
func New(alphabet Alphabet) *Codec {
	c := &Codec{alphabet: alphabet}
	for i := range c.encode {
		c.encode[i] = naBase
	}
	tBase := byte('T')
	if alphabet == RNA {
		tBase = 'U'
	}
	set := func(upper, lower byte, code int8) {
		c.encode[upper] = code
		c.encode[lower] = code
	}
	set('A', 'a', CodeA)
	set('C', 'c', CodeC)
	set('G', 'g', CodeG)
	set(tBase, tBase+('a'-'A'), CodeT)
	c.decode = [4]byte{'A', 'C', 'G', tBase}
	for b, mask := range iupacMasks {
		if b == 'T' || b == 'U' {
			b = tBase
		}
		c.ambig[b] = mask
		c.ambig[b+('a'-'A')] = mask
	}
	return c
}

var (
	dnaCodec *Codec
	rnaCodec *Codec
)

// DNACodec returns the process-wide DNA codec, building it on first use.
func DNACodec() *Codec {
	if dnaCodec == nil {
		dnaCodec = New(DNA)
	}
	return dnaCodec
}

// RNACodec returns the process-wide RNA codec, building it on first use.
func RNACodec() *Codec {
	if rnaCodec == nil {
		rnaCodec = New(RNA)
	}
	return rnaCodec
}

// EncodeByte returns the internal code for b, or (-1, false) if b is not in
// the alphabet.
func (c *Codec) EncodeByte(b byte) (int8, bool) {
	code := c.encode[b]
	return code, code != naBase
}

// DecodeByte returns the ASCII letter for an internal 0..3 code.
func (c *Codec) DecodeByte(code byte) byte {
	return c.decode[code&3]
}

// Ambiguity returns the 4-bit mask of primary bases compatible with b
// (an IUPAC ambiguity letter or a primary base), and whether b is known.
func (c *Codec) Ambiguity(b byte) (uint8, bool) {
	mask := c.ambig[b]
	return mask, mask != 0
}

// Encode writes the internal codes for src into dst (which must have the
// same length as src) and returns the number of bytes written. It fails
// with seqerr.AlphabetError at the first byte not in the alphabet,
// leaving dst partially written.
func (c *Codec) Encode(dst, src []byte) (int, error) {
	if len(dst) != len(src) {
		seqerr.Invariant("seqio.Codec", "Encode requires len(dst) == len(src)")
	}
	for i, b := range src {
		code, ok := c.EncodeByte(b)
		if !ok {
			return i, seqerr.NewAlphabetError(i, b)
		}
		dst[i] = byte(code)
	}
	return len(src), nil
}

// Decode writes the ASCII letters for src (a slice of 0..3 codes) into dst.
func (c *Codec) Decode(dst, src []byte) {
	if len(dst) != len(src) {
		seqerr.Invariant("seqio.Codec", "Decode requires len(dst) == len(src)")
	}
	for i, code := range src {
		dst[i] = c.DecodeByte(code)
	}
}
