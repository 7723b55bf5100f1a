// Package pwm scores a subject sequence against a 4xW position weight
// matrix and reports every start position whose score clears a
// threshold. Matrices come in as gonum.org/v1/gonum/mat Dense values and
// are unpacked into per-base rows for the scan loop.
package pwm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/grailbio/seqcore/match"
	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

// Scanner holds an immutable 4xW score matrix, one row per primary base
// code (seqio.CodeA..seqio.CodeT, in that row order) and one column per
// matrix position.
type Scanner struct {
	width  int
	scores [4][]float64
	codec  *seqio.Codec
}

// FromMatrix builds a Scanner from a 4xW gonum matrix (rows ordered
// A, C, G, T per seqio.CodeA..seqio.CodeT) and the codec used to map
// subject bytes to base codes.
func FromMatrix(m *mat.Dense, codec *seqio.Codec) (*Scanner, error) {
	r, w := m.Dims()
	if r != 4 {
		return nil, seqerr.NewInconsistentWidth(0)
	}
	if w == 0 {
		return nil, seqerr.EmptyPattern
	}
	s := &Scanner{width: w, codec: codec}
	for code := 0; code < 4; code++ {
		row := make([]float64, w)
		mat.Row(row, code, m)
		s.scores[code] = row
	}
	return s, nil
}

// Width returns the matrix's column count.
func (s *Scanner) Width() int { return s.width }

// ScoreAt returns the sum of PWM[code(subject[i+j]), j] for j in
// [0, width), treating any subject byte outside the 4-base alphabet as a
// zero contribution.
func (s *Scanner) ScoreAt(subject seqio.View, i int) (float64, error) {
	if err := subject.CheckBounds(i, s.width); err != nil {
		return 0, err
	}
	b := subject.Bytes()
	var total float64
	for j := 0; j < s.width; j++ {
		code, ok := s.codec.EncodeByte(b[i+j])
		if !ok {
			continue
		}
		total += s.scores[code][j]
	}
	return total, nil
}

// ScoreStarts returns the score at each candidate start position, in
// the order given.
func (s *Scanner) ScoreStarts(subject seqio.View, starts []int32) ([]float64, error) {
	out := make([]float64, len(starts))
	for k, start := range starts {
		score, err := s.ScoreAt(subject, int(start))
		if err != nil {
			return nil, err
		}
		out[k] = score
	}
	return out, nil
}

// Match reports every start position in [0, |subject|-width] whose
// ScoreAt is >= threshold.
func (s *Scanner) Match(subject seqio.View, threshold float64, sink *match.Sink) error {
	n := subject.Len()
	for i := 0; i+s.width <= n; i++ {
		score, err := s.ScoreAt(subject, i)
		if err != nil {
			return err
		}
		if score >= threshold {
			sink.Report(int32(i), int32(s.width))
		}
	}
	return nil
}
