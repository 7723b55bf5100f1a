package fasta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMultipleRecords(t *testing.T) {
	const data = ">chr7\nACGTAC\nGAGGAC\nGCG\n>chr8\nACGT\n"
	recs, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, []string{"chr7", "chr8"}, recs.Names)
	require.Equal(t, 2, recs.Set.Len())
	assert.Equal(t, "ACGTACGAGGACGCG", string(recs.Set.View(0).Bytes()))
	assert.Equal(t, "ACGT", string(recs.Set.View(1).Bytes()))
}

func TestReadTrimsHeaderComment(t *testing.T) {
	const data = ">chr1 A viral sequence\nACGT\n"
	recs, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1"}, recs.Names)
}

func TestReadRejectsDataBeforeHeader(t *testing.T) {
	_, err := Read(strings.NewReader("ACGT\n>chr1\nACGT\n"))
	assert.Error(t, err)
}

func TestReadEmptyInput(t *testing.T) {
	recs, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs.Names)
	assert.Equal(t, 0, recs.Set.Len())
}

func TestReadSkipsBlankLines(t *testing.T) {
	const data = ">chr1\nACGT\n\nACGT\n"
	recs, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGT", string(recs.Set.View(0).Bytes()))
}
