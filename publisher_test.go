package interprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryEnqueue_RejectsEmptyBody(t *testing.T) {
	q := newTestQueue(t, 64)
	pub := q.NewPublisher()

	_, err := pub.TryEnqueue(nil)
	require.Error(t, err)
	var invalid *InvalidOptionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "body", invalid.Field)
}

func TestTryEnqueue_RejectsAfterClose(t *testing.T) {
	q := newTestQueue(t, 64)
	pub := q.NewPublisher()
	require.NoError(t, q.Close())

	_, err := pub.TryEnqueue([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTryEnqueue_ExactFitSucceeds(t *testing.T) {
	q := newTestQueue(t, 24)
	pub := q.NewPublisher()

	ok, err := pub.TryEnqueue(make([]byte, 8)) // FrameLen(8) == 24 == Capacity
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(24), q.Stats().TailOffset)
}
