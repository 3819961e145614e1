package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueHeader_LoadCAS(t *testing.T) {
	base := make([]byte, HeaderSize)
	h := QueueHeader{Base: base}

	assert.Equal(t, int64(0), h.LoadHead())
	assert.Equal(t, int64(0), h.LoadTail())

	require.True(t, h.CASTail(0, 128))
	assert.Equal(t, int64(128), h.LoadTail())

	require.False(t, h.CASTail(0, 256), "stale expected value must not apply")
	assert.Equal(t, int64(128), h.LoadTail())

	require.True(t, h.CASHead(0, 64))
	assert.Equal(t, int64(64), h.LoadHead())
}

func TestQueueHeader_Zero(t *testing.T) {
	base := make([]byte, HeaderSize)
	h := QueueHeader{Base: base}
	h.CASTail(0, 42)
	h.CASHead(0, 7)

	h.Zero()

	assert.Equal(t, int64(0), h.LoadHead())
	assert.Equal(t, int64(0), h.LoadTail())
}

func TestMessageHeader_StateAndBodyLength(t *testing.T) {
	base := make([]byte, MessageHeaderSize)
	m := MessageHeader{Base: base}

	assert.Equal(t, StateEmpty, m.LoadState())

	require.True(t, m.CASState(StateEmpty, StateLockedToBeEnqueued))
	require.False(t, m.CASState(StateEmpty, StateReadyToBeConsumed), "state is no longer Empty")

	m.SetBodyLength(37)
	assert.Equal(t, int64(37), m.BodyLength())

	m.StoreState(StateReadyToBeConsumed)
	assert.Equal(t, StateReadyToBeConsumed, m.LoadState())
}

func TestFrameLen(t *testing.T) {
	cases := []struct {
		bodyLen int
		want    int64
	}{
		{0, 16},
		{1, 24},
		{3, 24},
		{8, 24},
		{9, 32},
		{16, 32},
	}
	for _, c := range cases {
		got := FrameLen(c.bodyLen)
		assert.Equalf(t, c.want, got, "FrameLen(%d)", c.bodyLen)
		assert.Zerof(t, got%8, "FrameLen(%d) = %d must be 8-byte aligned", c.bodyLen, got)
	}
}
