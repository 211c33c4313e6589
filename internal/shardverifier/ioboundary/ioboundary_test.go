package ioboundary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHintReaderRoundsCapacityUpToWord(t *testing.T) {
	assert := require.New(t)

	data := []byte{1, 2, 3, 4, 5} // length 5, rounds up to capacity 8
	var capacitySeen int
	r := NewHintReader(
		func() int { return len(data) },
		func(buf []byte, n int) {
			capacitySeen = cap(buf)
			copy(buf, data[:n])
		},
	)

	got := r.ReadVec()
	assert.Equal(data, got)
	assert.Equal(8, capacitySeen)
}

func TestHintReaderExactMultipleOfFour(t *testing.T) {
	assert := require.New(t)

	data := []byte{1, 2, 3, 4}
	var capacitySeen int
	r := NewHintReader(
		func() int { return len(data) },
		func(buf []byte, n int) { capacitySeen = cap(buf); copy(buf, data[:n]) },
	)

	got := r.ReadVec()
	assert.Equal(data, got)
	assert.Equal(4, capacitySeen)
}

func TestCommitSliceIsAppendOnly(t *testing.T) {
	assert := require.New(t)

	var emitted [][]byte
	w := NewSyscallWriter(FDPublicValues, func(fd uint32, buf []byte) {
		assert.Equal(uint32(FDPublicValues), fd)
		emitted = append(emitted, append([]byte(nil), buf...))
	})

	assert.NoError(CommitSlice(w, []byte("hello")))
	assert.NoError(CommitSlice(w, []byte(" world")))
	assert.Equal("hello world", string(w.Bytes()))
	assert.Len(emitted, 2)
}

func TestHintValueCBOREncodesAndWrites(t *testing.T) {
	assert := require.New(t)

	w := NewSyscallWriter(FDHint, func(fd uint32, buf []byte) {})
	assert.NoError(HintValue(w, map[string]int{"a": 1}))
	assert.NotEmpty(w.Bytes())
}

func TestReadValueAndCommitValuePreserveUnimplementedStatus(t *testing.T) {
	assert := require.New(t)

	r := NewHintReader(func() int { return 0 }, func(buf []byte, n int) {})
	_, err := ReadValue[int](r)
	assert.ErrorIs(err, ErrNotImplemented)

	w := NewSyscallWriter(FDPublicValues, func(fd uint32, buf []byte) {})
	err = CommitValue(w, 7)
	assert.ErrorIs(err, ErrNotImplemented)
}

func TestMemoryEventEncodeDecodeRoundTrip(t *testing.T) {
	assert := require.New(t)

	e := NewFinalizeEvent(0x1000, 42, 3, 99)
	encoded := e.Encode()
	assert.Len(encoded, 20)

	got, err := DecodeMemoryEvent(encoded)
	assert.NoError(err)
	assert.Equal(e, got)
}

func TestInitializeEventUsesShardOneTimestampOne(t *testing.T) {
	assert := require.New(t)

	e := NewInitializeEvent(0x2000, 7, false)
	assert.Equal(uint32(1), e.Shard)
	assert.Equal(uint32(1), e.Timestamp)
	assert.Equal(uint32(0), e.Used)
}

func TestInitializeEventCanBeMarkedUsed(t *testing.T) {
	assert := require.New(t)

	e := NewInitializeEvent(0x2000, 7, true)
	assert.Equal(uint32(1), e.Shard)
	assert.Equal(uint32(1), e.Timestamp)
	assert.Equal(uint32(1), e.Used)
}

func TestDecodeMemoryEventRejectsWrongLength(t *testing.T) {
	assert := require.New(t)
	_, err := DecodeMemoryEvent([]byte{1, 2, 3})
	assert.Error(err)
}
