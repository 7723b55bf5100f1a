package seqio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAccess(t *testing.T) {
	s := BuildSet([][]byte{[]byte("ACGT"), []byte("TTT"), []byte("")})
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "ACGT", string(s.View(0).Bytes()))
	assert.Equal(t, "TTT", string(s.View(1).Bytes()))
	assert.Equal(t, "", string(s.View(2).Bytes()))

	cache := s.Cache()
	require.Len(t, cache, 3)
	assert.Equal(t, "TTT", string(cache[1].Bytes()))
}

func TestViewBounds(t *testing.T) {
	v := NewView([]byte("ACGTACGT"))
	require.NoError(t, v.CheckBounds(0, 8))
	require.NoError(t, v.CheckBounds(2, 3))
	assert.Error(t, v.CheckBounds(6, 4))
	assert.Error(t, v.CheckBounds(-1, 2))
}

func TestKmerHashDeterministic(t *testing.T) {
	v1 := NewView([]byte("ACGTACGT"))
	v2 := NewView([]byte("ACGTACGT"))
	v3 := NewView([]byte("TTTTTTTT"))
	assert.Equal(t, KmerHash(v1), KmerHash(v2))
	assert.NotEqual(t, KmerHash(v1), KmerHash(v3))
}
