package seqio

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	c := DNACodec()
	f := func(bases []byte) bool {
		for i := range bases {
			bases[i] = "ACGT"[int(bases[i])%4]
		}
		codes := make([]byte, len(bases))
		n, err := c.Encode(codes, bases)
		require.NoError(t, err)
		require.Equal(t, len(bases), n)
		decoded := make([]byte, len(codes))
		c.Decode(decoded, codes)
		return string(decoded) == string(bases)
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestCodecRNA(t *testing.T) {
	c := RNACodec()
	code, ok := c.EncodeByte('U')
	require.True(t, ok)
	assert.EqualValues(t, CodeT, code)
	assert.Equal(t, byte('U'), c.DecodeByte(byte(code)))
	_, ok = c.EncodeByte('T')
	assert.False(t, ok, "RNA codec should not accept 'T'")
}

func TestCodecAlphabetError(t *testing.T) {
	c := DNACodec()
	_, err := c.Encode(make([]byte, 3), []byte("ACX"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the alphabet")
}

func TestAmbiguity(t *testing.T) {
	c := DNACodec()
	mask, ok := c.Ambiguity('N')
	require.True(t, ok)
	assert.Equal(t, uint8(1<<CodeA|1<<CodeC|1<<CodeG|1<<CodeT), mask)

	mask, ok = c.Ambiguity('R')
	require.True(t, ok)
	assert.Equal(t, uint8(1<<CodeA|1<<CodeG), mask)

	_, ok = c.Ambiguity('Z')
	assert.False(t, ok)
}
