package align

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

const negInf = math.MaxFloat64 * -1

func safeSum(x, y float64) float64 {
	if x == negInf {
		return x
	}
	return x + y
}

// traceback tags: substitution, deletion (gap in the subject),
// insertion (gap in the pattern), termination.
const (
	tagS byte = 'S'
	tagD byte = 'D'
	tagI byte = 'I'
	tagT byte = 'T'
)

func recycle(q []byte, i int) byte {
	switch len(q) {
	case 0:
		return 0
	case 1:
		return q[0]
	default:
		return q[i]
	}
}

// Aligner runs one set of scoring parameters against any number of
// sequence pairs.
type Aligner struct {
	Options
}

// New builds an Aligner from opts.
func New(opts Options) *Aligner { return &Aligner{opts} }

// planes holds the three Gotoh score matrices, flattened row-major.
type planes struct {
	n1, n2 int
	m, d, i []float64
}

func newPlanes(n1, n2 int) *planes {
	size := (n1 + 1) * (n2 + 1)
	return &planes{n1: n1, n2: n2, m: make([]float64, size), d: make([]float64, size), i: make([]float64, size)}
}

func (p *planes) idx(i, j int) int { return i*(p.n2+1) + j }
func (p *planes) M(i, j int) float64 { return p.m[p.idx(i, j)] }
func (p *planes) D(i, j int) float64 { return p.d[p.idx(i, j)] }
func (p *planes) I(i, j int) float64 { return p.i[p.idx(i, j)] }
func (p *planes) setM(i, j int, v float64) { p.m[p.idx(i, j)] = v }
func (p *planes) setD(i, j int, v float64) { p.d[p.idx(i, j)] = v }
func (p *planes) setI(i, j int, v float64) { p.i[p.idx(i, j)] = v }

func (a *Aligner) initBoundary(p *planes, rules boundaryRules) {
	n1, n2 := p.n1, p.n2
	for i := 0; i <= n1; i++ {
		if rules.freePattern {
			p.setD(i, 0, 0)
		} else {
			p.setD(i, 0, a.GapOpening+float64(i)*a.GapExtension)
		}
	}
	for j := 0; j <= n2; j++ {
		if rules.freeSubject {
			p.setI(0, j, 0)
		} else {
			p.setI(0, j, a.GapOpening+float64(j)*a.GapExtension)
		}
	}
	p.setM(0, 0, 0)
	for i := 1; i <= n1; i++ {
		p.setM(i, 0, negInf)
		p.setI(i, 0, negInf)
	}
	for j := 1; j <= n2; j++ {
		p.setM(0, j, negInf)
		p.setD(0, j, negInf)
	}
}

// fill runs the forward DP recurrence, optionally recording traceback tags
// (nil traceback arrays mean the score-only fast path). It returns the
// fully populated planes.
func (a *Aligner) fill(ctx context.Context, pat, sub seqio.View, patQ, subQ []byte, rules boundaryRules, sTrace, dTrace, iTrace []byte) (*planes, error) {
	n1, n2 := pat.Len(), sub.Len()
	p := newPlanes(n1, n2)
	a.initBoundary(p, rules)
	gapOpenExt := a.GapOpening + a.GapExtension

	for i := 1; i <= n1; i++ {
		if err := ctx.Err(); err != nil {
			return nil, seqerr.Cancelled
		}
		r1 := pat.At(i - 1)
		q1 := recycle(patQ, i-1)
		for j := 1; j <= n2; j++ {
			r2 := sub.At(j - 1)
			q2 := recycle(subQ, j-1)
			sub_, err := a.Scorer.Substitution(r1, r2, q1, q2)
			if err != nil {
				return nil, errors.WithStack(err)
			}

			var mTag byte
			switch {
			case p.M(i-1, j-1) >= math.Max(p.D(i-1, j-1), p.I(i-1, j-1)):
				mTag = tagS
				p.setM(i, j, safeSum(p.M(i-1, j-1), sub_))
			case p.I(i-1, j-1) >= p.D(i-1, j-1):
				mTag = tagI
				p.setM(i, j, safeSum(p.I(i-1, j-1), sub_))
			default:
				mTag = tagD
				p.setM(i, j, safeSum(p.D(i-1, j-1), sub_))
			}

			var dTag byte
			if safeSum(p.M(i-1, j), a.GapOpening) >= p.D(i-1, j) {
				dTag = tagS
				p.setD(i, j, safeSum(p.M(i-1, j), gapOpenExt))
			} else {
				dTag = tagD
				p.setD(i, j, safeSum(p.D(i-1, j), a.GapExtension))
			}

			var iTag byte
			if safeSum(p.M(i, j-1), a.GapOpening) >= p.I(i, j-1) {
				iTag = tagS
				p.setI(i, j, safeSum(p.M(i, j-1), gapOpenExt))
			} else {
				iTag = tagI
				p.setI(i, j, safeSum(p.I(i, j-1), a.GapExtension))
			}

			if rules.local {
				v := math.Max(0, p.M(i, j))
				p.setM(i, j, v)
				if v == 0 {
					mTag, dTag, iTag = tagT, tagT, tagT
				}
			}
			if sTrace != nil {
				off := (i-1)*n2 + (j - 1)
				sTrace[off], dTrace[off], iTrace[off] = mTag, dTag, iTag
			}
		}
	}
	return p, nil
}

// optimum locates the start cell, its score, and the traceback tag to
// begin walking from, per the Type's boundary rules. For every type but
// Global the walk re-enters via the substitution-plane trace table. For
// Local the score is the max of the M plane; for the overlap types it is
// still the max over all three planes.
func (a *Aligner) optimum(p *planes, rules boundaryRules) (row, col int, score float64, trace byte) {
	n1, n2 := p.n1, p.n2
	switch {
	case !rules.local && !rules.scanPatternEdge && !rules.scanSubjectEdge:
		// Global.
		row, col = n1, n2
		score = math.Max(p.M(n1, n2), math.Max(p.D(n1, n2), p.I(n1, n2)))
		switch {
		case p.M(n1, n2) >= math.Max(p.D(n1, n2), p.I(n1, n2)):
			trace = tagS
		case p.I(n1, n2) >= p.D(n1, n2):
			trace = tagI
		default:
			trace = tagD
		}
		return
	case rules.local:
		// M is floored at 0, so the optimum is never below the empty
		// alignment's score.
		score = 0
		for i := 1; i <= n1; i++ {
			for j := 1; j <= n2; j++ {
				if v := p.M(i, j); v > score {
					score, row, col = v, i, j
				}
			}
		}
		trace = tagS
		if score <= 0 {
			trace = tagT
		}
		return
	default:
		score = negInf
		trace = tagS
		if rules.scanPatternEdge {
			// Pattern tail may dangle: the alignment ends wherever the
			// subject runs out, so search the j == n2 column.
			for i := 1; i <= n1; i++ {
				v := math.Max(p.M(i, n2), math.Max(p.D(i, n2), p.I(i, n2)))
				if v > score {
					score, row, col = v, i, n2
				}
			}
		}
		if rules.scanSubjectEdge {
			for j := 1; j <= n2; j++ {
				v := math.Max(p.M(n1, j), math.Max(p.D(n1, j), p.I(n1, j)))
				if v > score {
					score, row, col = v, n1, j
				}
			}
		}
		return
	}
}

// step is one traceback op in chronological (left-to-right) order.
type step struct {
	tag  byte
	r1, r2 int32 // 0-based index into pattern/subject, or -1 for a gap
}

// Align runs the full DP and reconstructs one optimal alignment.
func (a *Aligner) Align(ctx context.Context, pattern, subject seqio.View, patternQuality, subjectQuality []byte) (Result, error) {
	n1, n2 := pattern.Len(), subject.Len()
	rules := rulesFor(a.Type)
	sTrace := make([]byte, n1*n2)
	dTrace := make([]byte, n1*n2)
	iTrace := make([]byte, n1*n2)
	p, err := a.fill(ctx, pattern, subject, patternQuality, subjectQuality, rules, sTrace, dTrace, iTrace)
	if err != nil {
		return Result{}, err
	}
	startRow, startCol, startScore, trace := a.optimum(p, rules)

	var leftover []step
	if a.Type != Global && a.Type != Local && (startRow < n1 || startCol < n2) {
		if startRow == n1 {
			for j := startCol; j < n2; j++ {
				leftover = append(leftover, step{tag: tagI, r1: -1, r2: int32(j)})
			}
		} else {
			for i := startRow; i < n1; i++ {
				leftover = append(leftover, step{tag: tagD, r1: int32(i), r2: -1})
			}
		}
	}

	var rev []step
	i, j := startRow-1, startCol-1
	for trace != tagT && (i >= 0 || j >= 0) {
		// Past the top row or left column there are no trace entries:
		// the only way back is a straight gap run along the boundary.
		// Local alignments instead stop here, since their paths start at
		// a 0 cell rather than on the boundary.
		if i < 0 || j < 0 {
			if rules.local {
				break
			}
			if j < 0 {
				rev = append(rev, step{tag: tagD, r1: int32(i), r2: -1})
				i--
			} else {
				rev = append(rev, step{tag: tagI, r1: -1, r2: int32(j)})
				j--
			}
			continue
		}
		switch trace {
		case tagD:
			next := dTrace[i*n2+j]
			if next != tagT {
				rev = append(rev, step{tag: tagD, r1: int32(i), r2: -1})
				i--
			}
			trace = next
		case tagI:
			next := iTrace[i*n2+j]
			if next != tagT {
				rev = append(rev, step{tag: tagI, r1: -1, r2: int32(j)})
				j--
			}
			trace = next
		case tagS:
			next := sTrace[i*n2+j]
			if next != tagT {
				rev = append(rev, step{tag: tagS, r1: int32(i), r2: int32(j)})
				i--
				j--
			}
			trace = next
		default:
			seqerr.Invariant("align", "unknown traceback tag")
		}
	}
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	ops := append(rev, leftover...)

	return buildResult(pattern, subject, ops, startScore, a.gapByte()), nil
}

func buildResult(pattern, subject seqio.View, ops []step, score float64, gap byte) Result {
	res := Result{Score: score}
	res.Aligned1 = make([]byte, len(ops))
	res.Aligned2 = make([]byte, len(ops))
	var curIndel1, curIndel2 *Indel
	first1, first2 := int32(-1), int32(-1)
	last1, last2 := int32(-1), int32(-1)
	for k, op := range ops {
		if op.r1 >= 0 {
			res.Aligned1[k] = pattern.At(int(op.r1))
			if first1 == -1 {
				first1 = op.r1
			}
			last1 = op.r1
			curIndel1 = nil
		} else {
			res.Aligned1[k] = gap
			if curIndel1 == nil {
				res.Indels1 = append(res.Indels1, Indel{Start: last1 + 2, Width: 0})
				curIndel1 = &res.Indels1[len(res.Indels1)-1]
			}
			curIndel1.Width++
		}
		if op.r2 >= 0 {
			res.Aligned2[k] = subject.At(int(op.r2))
			if first2 == -1 {
				first2 = op.r2
			}
			last2 = op.r2
			curIndel2 = nil
		} else {
			res.Aligned2[k] = gap
			if curIndel2 == nil {
				res.Indels2 = append(res.Indels2, Indel{Start: last2 + 2, Width: 0})
				curIndel2 = &res.Indels2[len(res.Indels2)-1]
			}
			curIndel2.Width++
		}
		if op.tag == tagS && op.r1 >= 0 && op.r2 >= 0 {
			if pattern.At(int(op.r1)) != subject.At(int(op.r2)) {
				res.Mismatches = append(res.Mismatches, op.r1)
			}
		}
	}
	if first1 == -1 {
		first1, last1 = 0, -1
	}
	if first2 == -1 {
		first2, last2 = 0, -1
	}
	res.Range1 = Range{Start: first1, Width: last1 - first1 + 1}
	res.Range2 = Range{Start: first2, Width: last2 - first2 + 1}
	return res
}

// Score computes only the optimal score, keeping two rows of each plane
// live at a time and allocating no traceback matrices.
func (a *Aligner) Score(ctx context.Context, pattern, subject seqio.View, patternQuality, subjectQuality []byte) (float64, error) {
	n1, n2 := pattern.Len(), subject.Len()
	rules := rulesFor(a.Type)
	gapOpenExt := a.GapOpening + a.GapExtension

	prevM := make([]float64, n2+1)
	prevD := make([]float64, n2+1)
	prevI := make([]float64, n2+1)
	curM := make([]float64, n2+1)
	curD := make([]float64, n2+1)
	curI := make([]float64, n2+1)

	prevM[0] = 0
	for j := 1; j <= n2; j++ {
		prevM[j] = negInf
	}
	if rules.freePattern {
		prevD[0] = 0
	} else {
		prevD[0] = a.GapOpening
	}
	for j := 1; j <= n2; j++ {
		prevD[j] = negInf
	}
	for j := 0; j <= n2; j++ {
		if rules.freeSubject {
			prevI[j] = 0
		} else {
			prevI[j] = a.GapOpening + float64(j)*a.GapExtension
		}
	}

	best := negInf
	if rules.local {
		best = 0
	}

	for i := 1; i <= n1; i++ {
		if err := ctx.Err(); err != nil {
			return 0, seqerr.Cancelled
		}
		r1 := pattern.At(i - 1)
		q1 := recycle(patternQuality, i-1)

		if rules.freePattern {
			curD[0] = 0
		} else {
			curD[0] = a.GapOpening + float64(i)*a.GapExtension
		}
		curM[0] = negInf
		curI[0] = negInf

		for j := 1; j <= n2; j++ {
			r2 := subject.At(j - 1)
			q2 := recycle(subjectQuality, j-1)
			sub_, err := a.Scorer.Substitution(r1, r2, q1, q2)
			if err != nil {
				return 0, errors.WithStack(err)
			}

			switch {
			case prevM[j-1] >= math.Max(prevD[j-1], prevI[j-1]):
				curM[j] = safeSum(prevM[j-1], sub_)
			case prevI[j-1] >= prevD[j-1]:
				curM[j] = safeSum(prevI[j-1], sub_)
			default:
				curM[j] = safeSum(prevD[j-1], sub_)
			}

			if safeSum(prevM[j], a.GapOpening) >= prevD[j] {
				curD[j] = safeSum(prevM[j], gapOpenExt)
			} else {
				curD[j] = safeSum(prevD[j], a.GapExtension)
			}

			if safeSum(curM[j-1], a.GapOpening) >= curI[j-1] {
				curI[j] = safeSum(curM[j-1], gapOpenExt)
			} else {
				curI[j] = safeSum(curI[j-1], a.GapExtension)
			}

			if rules.local {
				curM[j] = math.Max(0, curM[j])
				if curM[j] > best {
					best = curM[j]
				}
			}
		}
		if rules.scanPatternEdge {
			if v := math.Max(curM[n2], math.Max(curD[n2], curI[n2])); v > best {
				best = v
			}
		}
		prevM, curM = curM, prevM
		prevD, curD = curD, prevD
		prevI, curI = curI, prevI
	}

	switch {
	case rules.local:
		return best, nil
	case rules.scanSubjectEdge:
		for j := 1; j <= n2; j++ {
			if v := math.Max(prevM[j], math.Max(prevD[j], prevI[j])); v > best {
				best = v
			}
		}
		return best, nil
	case rules.scanPatternEdge:
		return best, nil
	default:
		return math.Max(prevM[n2], math.Max(prevD[n2], prevI[n2])), nil
	}
}
