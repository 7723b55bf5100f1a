package actree

import (
	"sort"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/seqcore/seqio"
)

func bandsOf(strs ...string) [][]byte {
	out := make([][]byte, len(strs))
	for i, s := range strs {
		out[i] = []byte(s)
	}
	return out
}

type hitList []Hit

func (h hitList) Len() int      { return len(h) }
func (h hitList) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h hitList) Less(i, j int) bool {
	if h[i].Start != h[j].Start {
		return h[i].Start < h[j].Start
	}
	return h[i].PatternID < h[j].PatternID
}

func TestScanExactDictionary(t *testing.T) {
	// S1: dictionary ["ACG","ACT","GCA"], subject "ACGTACTGCA".
	// Expected (0-based): (0,id=0), (4,id=1), (7,id=2).
	tr, err := Build(bandsOf("ACG", "ACT", "GCA"), seqio.DNACodec(), Stats{})
	require.NoError(t, err)

	var hits hitList
	tr.Scan(seqio.NewView([]byte("ACGTACTGCA")), func(h Hit) { hits = append(hits, h) })
	sort.Sort(hits)

	require.Len(t, hits, 3)
	assert.Equal(t, Hit{PatternID: 0, Start: 0}, hits[0])
	assert.Equal(t, Hit{PatternID: 1, Start: 4}, hits[1])
	assert.Equal(t, Hit{PatternID: 2, Start: 7}, hits[2])
}

func TestScanReportsAllDuplicates(t *testing.T) {
	tr, err := Build(bandsOf("ACG", "ACG", "TTT"), seqio.DNACodec(), Stats{})
	require.NoError(t, err)
	assert.EqualValues(t, -1, tr.Dup2Unq()[0])
	assert.EqualValues(t, 0, tr.Dup2Unq()[1])

	var hits hitList
	tr.Scan(seqio.NewView([]byte("ACG")), func(h Hit) { hits = append(hits, h) })
	sort.Sort(hits)
	require.Len(t, hits, 2)
	assert.Equal(t, int32(0), hits[0].PatternID)
	assert.Equal(t, int32(1), hits[1].PatternID)
}

func TestScanHandlesUnknownBases(t *testing.T) {
	tr, err := Build(bandsOf("ACG"), seqio.DNACodec(), Stats{})
	require.NoError(t, err)
	var hits hitList
	tr.Scan(seqio.NewView([]byte("NNACGNN")), func(h Hit) { hits = append(hits, h) })
	require.Len(t, hits, 1)
	assert.Equal(t, int32(2), hits[0].Start)
}

func TestBuildThenSelfScan(t *testing.T) {
	// Scanning any dictionary member against itself yields a hit for its
	// own id at position 0, for arbitrary dictionaries.
	f := func(raw []byte, w uint8) bool {
		width := int(w%8) + 1
		var bands [][]byte
		for i := 0; i+width <= len(raw) && len(bands) < 16; i += width {
			b := make([]byte, width)
			for j := range b {
				b[j] = "ACGT"[int(raw[i+j])%4]
			}
			bands = append(bands, b)
		}
		if len(bands) == 0 {
			return true
		}
		tr, err := Build(bands, seqio.DNACodec(), Stats{})
		if err != nil {
			return false
		}
		for id, b := range bands {
			found := false
			tr.Scan(seqio.NewView(b), func(h Hit) {
				if h.Start == 0 && int(h.PatternID) == id {
					found = true
				}
			})
			if !found {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestScanSharedMatchesScanAfterPrecompute(t *testing.T) {
	tr, err := Build(bandsOf("ACA", "CAC", "AAA"), seqio.DNACodec(), Stats{})
	require.NoError(t, err)
	tr.PrecomputeFailLinks()

	subject := seqio.NewView([]byte("ACACACAAAACA"))
	var want, got hitList
	tr.Scan(subject, func(h Hit) { want = append(want, h) })
	tr.ScanShared(subject, func(h Hit) { got = append(got, h) })
	sort.Sort(want)
	sort.Sort(got)
	assert.Equal(t, want, got)
	require.NotEmpty(t, got)
}

func TestBuildRejectsEmptyDictionary(t *testing.T) {
	_, err := Build(nil, seqio.DNACodec(), Stats{})
	assert.Error(t, err)
	_, err = Build(bandsOf(""), seqio.DNACodec(), Stats{})
	assert.Error(t, err)
}

func TestBuildRejectsNonBase(t *testing.T) {
	_, err := Build(bandsOf("ACN"), seqio.DNACodec(), Stats{})
	assert.Error(t, err)
}

func TestBuildRejectsInconsistentWidth(t *testing.T) {
	_, err := Build(bandsOf("AC", "ACG"), seqio.DNACodec(), Stats{})
	assert.Error(t, err)
}

func TestSerializeRoundTrip(t *testing.T) {
	tr, err := Build(bandsOf("ACG", "ACT", "GCA", "ACG"), seqio.DNACodec(), Stats{})
	require.NoError(t, err)

	raw, err := tr.ToBytes()
	require.NoError(t, err)

	loaded, err := FromBytes(raw, seqio.DNACodec())
	require.NoError(t, err)
	assert.Equal(t, tr.Width(), loaded.Width())
	assert.Equal(t, tr.Dup2Unq(), loaded.Dup2Unq())

	var want, got hitList
	subject := seqio.NewView([]byte("ACGTACTGCAACG"))
	tr.Scan(subject, func(h Hit) { want = append(want, h) })
	loaded.Scan(subject, func(h Hit) { got = append(got, h) })
	sort.Sort(want)
	sort.Sort(got)
	assert.Equal(t, want, got)
}

func TestFromBytesRejectsCorruption(t *testing.T) {
	tr, err := Build(bandsOf("ACG"), seqio.DNACodec(), Stats{})
	require.NoError(t, err)
	raw, err := tr.ToBytes()
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	_, err = FromBytes(raw, seqio.DNACodec())
	assert.Error(t, err)
}

func TestDeriveTrustedBandModeA(t *testing.T) {
	bands, stats, err := DeriveTrustedBand(bandsOf("ACGTTT", "ACGTT"), CropFixedHead(1, 3))
	require.NoError(t, err)
	assert.Equal(t, "ACG", string(bands[0]))
	assert.Equal(t, "ACG", string(bands[1]))
	assert.Equal(t, 2, stats.TailMinWidth)
	assert.Equal(t, 3, stats.TailMaxWidth)
}

func TestDeriveTrustedBandModeB(t *testing.T) {
	bands, stats, err := DeriveTrustedBand(bandsOf("TTTACG", "TTACG"), CropFixedTail(-3, -1))
	require.NoError(t, err)
	assert.Equal(t, "ACG", string(bands[0]))
	assert.Equal(t, "ACG", string(bands[1]))
	assert.Equal(t, 2, stats.HeadMinWidth)
	assert.Equal(t, 3, stats.HeadMaxWidth)
}

func TestDeriveTrustedBandModeC(t *testing.T) {
	bands, _, err := DeriveTrustedBand(bandsOf("AACGT", "AACGT"), CropFromStart(2))
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(bands[0]))

	_, _, err = DeriveTrustedBand(bandsOf("AACGT", "AACG"), CropFromStart(2))
	assert.Error(t, err)
}

func TestDeriveTrustedBandModeD(t *testing.T) {
	bands, _, err := DeriveTrustedBand(bandsOf("ACGTT", "ACGTT"), CropFromEnd(-2))
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(bands[0]))
}

func TestDeriveTrustedBandInputTooShort(t *testing.T) {
	_, _, err := DeriveTrustedBand(bandsOf("AC"), CropFixedHead(1, 3))
	assert.Error(t, err)
}
