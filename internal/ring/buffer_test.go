package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plkumar/interprocess/internal/wire"
)

func TestNew_ValidatesCapacity(t *testing.T) {
	_, err := New(make([]byte, 16), 0)
	require.Error(t, err)

	_, err = New(make([]byte, 16), 5)
	require.Error(t, err, "capacity must be a multiple of 8")

	_, err = New(make([]byte, 8), 16)
	require.Error(t, err, "backing slice shorter than capacity")

	buf, err := New(make([]byte, 16), 16)
	require.NoError(t, err)
	assert.Equal(t, int64(16), buf.Capacity)
}

func TestBuffer_WriteReadNoWrap(t *testing.T) {
	buf, err := New(make([]byte, 16), 16)
	require.NoError(t, err)

	buf.Write(0, []byte("hello"))
	got := buf.Read(0, 5, nil)
	assert.Equal(t, []byte("hello"), got)
}

func TestBuffer_WriteReadAcrossWrap(t *testing.T) {
	buf, err := New(make([]byte, 8), 8)
	require.NoError(t, err)

	// Offset 6 with 4 bytes wraps: 2 bytes land at [6,8), 2 at [0,2).
	buf.Write(6, []byte{1, 2, 3, 4})
	got := buf.Read(6, 4, nil)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
	assert.Equal(t, []byte{3, 4}, buf.Data[0:2], "wrapped tail must land at index 0")
	assert.Equal(t, []byte{1, 2}, buf.Data[6:8])
}

func TestBuffer_ReadIntoCallerBuffer(t *testing.T) {
	buf, err := New(make([]byte, 16), 16)
	require.NoError(t, err)
	buf.Write(0, []byte("abcd"))

	dst := make([]byte, 0, 8)
	got := buf.Read(0, 4, dst)
	assert.Equal(t, []byte("abcd"), got)
}

func TestBuffer_Clear(t *testing.T) {
	buf, err := New(make([]byte, 8), 8)
	require.NoError(t, err)
	buf.Write(6, []byte{9, 9, 9, 9})

	buf.Clear(6, 4)

	assert.Equal(t, []byte{0, 0}, buf.Data[0:2])
	assert.Equal(t, []byte{0, 0}, buf.Data[6:8])
}

func TestWrite_FixedSizeValue(t *testing.T) {
	buf, err := New(make([]byte, 16), 16)
	require.NoError(t, err)

	Write(buf, 0, int64(0x0102030405060708))
	got := buf.Read(0, 8, nil)
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, got, "little-endian host byte order")

	type pair struct {
		A int32
		B int32
	}
	Write(buf, 8, pair{A: 1, B: 2})
	gotA := buf.Read(8, 4, nil)
	assert.Equal(t, []byte{1, 0, 0, 0}, gotA)
}

func TestBuffer_MessageHeaderAt(t *testing.T) {
	buf, err := New(make([]byte, 32), 32)
	require.NoError(t, err)

	h := buf.MessageHeaderAt(8)
	h.StoreState(wire.StateReadyToBeConsumed)
	h.SetBodyLength(12)

	h2 := buf.MessageHeaderAt(8)
	assert.Equal(t, wire.StateReadyToBeConsumed, h2.LoadState())
	assert.Equal(t, int64(12), h2.BodyLength())
}
