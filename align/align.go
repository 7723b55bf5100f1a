// Package align implements a Gotoh affine-gap pairwise aligner: three
// score planes per cell (substitution/deletion/insertion), compact
// one-byte traceback tags, five alignment types from global
// (Needleman-Wunsch) through local (Smith-Waterman) and the overlap
// variants, and a pairwise distance mode over a seqio.Set.
package align

import (
	"github.com/pkg/errors"

	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

// Type selects the alignment semantics governing boundary
// initialization and optimum selection.
type Type int

const (
	// Global requires both sequences consumed end to end (Needleman-Wunsch).
	Global Type = iota
	// Local floors M at 0 and finds the best-scoring substring pair
	// (Smith-Waterman).
	Local
	// Overlap lets both sequences dangle for free at either end.
	Overlap
	// PatternOverlap lets the pattern (sequence 1) dangle for free at
	// either end; the subject must align edge to edge.
	PatternOverlap
	// SubjectOverlap lets the subject (sequence 2) dangle for free at
	// either end; the pattern must align edge to edge.
	SubjectOverlap
)

// boundaryRules describes, for a Type, whether each sequence's leading
// gap run is free (cost 0) rather than charged gapOpen+i*gapExt, and
// whether that sequence's tail may dangle, in which case the optimum is
// searched along the matrix edge where the other sequence is fully
// consumed instead of being pinned to the final cell.
type boundaryRules struct {
	freePattern, freeSubject bool // leading dangle of that sequence costs 0
	scanPatternEdge          bool // pattern tail may dangle: search the j==n2 column
	scanSubjectEdge          bool // subject tail may dangle: search the i==n1 row
	local                    bool
}

func rulesFor(t Type) boundaryRules {
	switch t {
	case Global:
		return boundaryRules{}
	case Local:
		// Smith-Waterman scores every alignment against a 0 baseline, so
		// both boundary chains are 0 rather than charged.
		return boundaryRules{local: true, freePattern: true, freeSubject: true}
	case Overlap:
		return boundaryRules{freePattern: true, freeSubject: true, scanPatternEdge: true, scanSubjectEdge: true}
	case PatternOverlap:
		return boundaryRules{freePattern: true, scanPatternEdge: true}
	case SubjectOverlap:
		return boundaryRules{freeSubject: true, scanSubjectEdge: true}
	default:
		seqerr.Invariant("align", "unknown Type")
		return boundaryRules{}
	}
}

// Scorer supplies the substitution score for one aligned pair of
// residues. q1 and q2 are ignored by scorers that do not weight by
// quality.
type Scorer interface {
	Substitution(residue1, residue2, q1, q2 byte) (float64, error)
}

// ConstantScorer indexes a fixed 4x4 substitution matrix by the codec's
// primary base codes.
type ConstantScorer struct {
	Codec  *seqio.Codec
	Matrix [4][4]float64
}

// Substitution implements Scorer.
func (s *ConstantScorer) Substitution(r1, r2, _, _ byte) (float64, error) {
	c1, ok1 := s.Codec.EncodeByte(r1)
	if !ok1 {
		return 0, seqerr.NewAlphabetError(0, r1)
	}
	c2, ok2 := s.Codec.EncodeByte(r2)
	if !ok2 {
		return 0, seqerr.NewAlphabetError(0, r2)
	}
	return s.Matrix[c1][c2], nil
}

// FlatScorer scores a pair by literal byte equality with a single match
// and mismatch constant, bypassing the codec entirely. It suits
// plain-text inputs that are not restricted to one biological alphabet.
type FlatScorer struct {
	Match, Mismatch float64
}

// Substitution implements Scorer.
func (s *FlatScorer) Substitution(r1, r2, _, _ byte) (float64, error) {
	if r1 == r2 {
		return s.Match, nil
	}
	return s.Mismatch, nil
}

// QualityIndex maps a raw quality byte to a row/column index into a
// QualityScorer's match/mismatch tables. An unrecognized byte is an
// error, not a silent default.
type QualityIndex func(q byte) (int, error)

// LookupIndex builds a QualityIndex from a dense table indexed by raw
// byte value, with a negative entry (or an out-of-range byte) marking
// bytes that have no index.
func LookupIndex(table []int) QualityIndex {
	return func(q byte) (int, error) {
		if int(q) >= len(table) || table[q] < 0 {
			return 0, seqerr.NewKeyNotInLookupTable(q)
		}
		return table[q], nil
	}
}

// PhredIndex is the usual Sanger/Phred+33 QualityIndex: '!' (0) through
// '~' (93).
func PhredIndex(q byte) (int, error) {
	if q < '!' || q > '~' {
		return 0, seqerr.NewKeyNotInLookupTable(q)
	}
	return int(q - '!'), nil
}

// QualityScorer scores a pair under quality-weighted substitution
// tables, selecting MatchTable vs MismatchTable by whether the two raw
// residues are identical, then indexing the chosen table by the two
// quality indices.
type QualityScorer struct {
	Codec                     *seqio.Codec
	Index                     QualityIndex
	MatchTable, MismatchTable [][]float64
}

// Substitution implements Scorer.
func (s *QualityScorer) Substitution(r1, r2, q1, q2 byte) (float64, error) {
	if _, ok := s.Codec.EncodeByte(r1); !ok {
		return 0, seqerr.NewAlphabetError(0, r1)
	}
	if _, ok := s.Codec.EncodeByte(r2); !ok {
		return 0, seqerr.NewAlphabetError(0, r2)
	}
	a, err := s.Index(q1)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	b, err := s.Index(q2)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if r1 == r2 {
		return s.MatchTable[a][b], nil
	}
	return s.MismatchTable[a][b], nil
}

// Options bundles one alignment's parameters. GapOpening and
// GapExtension are non-positive and added directly to running scores.
type Options struct {
	Type                   Type
	GapOpening, GapExtension float64
	Scorer                 Scorer
	GapByte                byte // defaults to '-' when zero
}

func (o Options) gapByte() byte {
	if o.GapByte == 0 {
		return '-'
	}
	return o.GapByte
}

// Range is a 0-based half-open [Start, Start+Width) span within one of the
// two unaligned input sequences.
type Range struct {
	Start, Width int32
}

// Indel is one contiguous gap run, reported with a 1-based start
// coordinate in the unaligned sequence it interrupts and its run
// length.
type Indel struct {
	Start, Width int32
}

// Result is the outcome of a traceback-producing Align call.
type Result struct {
	Score             float64
	Aligned1, Aligned2 []byte
	Range1, Range2    Range
	Mismatches        []int32 // 0-based positions in sequence 1
	Indels1, Indels2  []Indel
}
