package interprocess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryDequeue_RejectsAfterClose(t *testing.T) {
	q := newTestQueue(t, 64)
	sub := q.NewSubscriber()
	require.NoError(t, q.Close())

	_, _, err := sub.TryDequeue(context.Background(), nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTryDequeue_ReusesCallerBufferWhenLargeEnough(t *testing.T) {
	q := newTestQueue(t, 64)
	pub := q.NewPublisher()
	sub := q.NewSubscriber()

	ok, err := pub.TryEnqueue([]byte("hello"))
	require.NoError(t, err)
	require.True(t, ok)

	dst := make([]byte, 0, 32)
	got, out, err := sub.TryDequeue(context.Background(), dst)
	require.NoError(t, err)
	require.True(t, got)
	assert.Equal(t, []byte("hello"), out)
}

func TestTryDequeue_DeliversInPublishOrder(t *testing.T) {
	q := newTestQueue(t, 256)
	pub := q.NewPublisher()
	sub := q.NewSubscriber()

	bodies := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	for _, b := range bodies {
		ok, err := pub.TryEnqueue(b)
		require.NoError(t, err)
		require.True(t, ok)
	}

	for _, want := range bodies {
		got, out, err := sub.TryDequeue(context.Background(), nil)
		require.NoError(t, err)
		require.True(t, got)
		assert.Equal(t, want, out)
	}
}
