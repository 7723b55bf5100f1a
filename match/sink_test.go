package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkCountMode(t *testing.T) {
	s := New(Count)
	s.Report(0, 3)
	s.Report(5, 3)
	r := s.Materialize()
	assert.Equal(t, int64(2), r.Count)
	assert.Nil(t, r.Starts)
	assert.Nil(t, r.Widths)
	assert.EqualValues(t, 2, s.Len())
}

func TestSinkRangesMode(t *testing.T) {
	s := New(Ranges)
	s.Report(0, 3)
	s.Report(5, 4)
	r := s.Materialize()
	require.Equal(t, 2, len(r.Starts))
	assert.Equal(t, []int32{0, 5}, r.Starts)
	assert.Equal(t, []int32{3, 4}, r.Widths)
}

func TestSinkShift(t *testing.T) {
	s := New(Ranges)
	s.Shift(100)
	s.Report(0, 3)
	s.Shift(200)
	s.Report(2, 5)
	r := s.Materialize()
	assert.Equal(t, []int32{100, 202}, r.Starts)
}

func TestSinkDropCurrent(t *testing.T) {
	s := New(Ranges)
	s.Shift(10)
	s.Report(0, 1)
	s.Report(1, 1)
	s.DropCurrent()
	assert.EqualValues(t, 0, s.Len())
	s.Report(0, 2)
	r := s.Materialize()
	require.Equal(t, 1, len(r.Starts))
	assert.Equal(t, int32(10), r.Starts[0])
}

func TestSinkReinit(t *testing.T) {
	s := New(Ranges)
	s.Report(0, 1)
	s.Init(Count)
	s.Report(0, 1)
	r := s.Materialize()
	assert.Equal(t, Count, r.Mode)
	assert.EqualValues(t, 1, r.Count)
	assert.Nil(t, r.Starts)
}
