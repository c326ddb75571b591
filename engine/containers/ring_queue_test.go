package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	q := NewRingQueue[int](4)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))
	assert.Equal(t, 3, q.Len())

	first, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	for want := 1; want <= 3; want++ {
		got, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, q.IsEmpty())
}

func TestRingQueueFullAndEmptyErrors(t *testing.T) {
	q := NewRingQueue[string](2)
	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	assert.True(t, q.IsFull())
	assert.Error(t, q.Enqueue("c"))

	_, err := q.Dequeue()
	require.NoError(t, err)
	_, err = q.Dequeue()
	require.NoError(t, err)
	_, err = q.Dequeue()
	assert.Error(t, err)
	_, err = q.Peek()
	assert.Error(t, err)
}

func TestRingQueueWrapsAround(t *testing.T) {
	q := NewRingQueue[int](3)
	for round := 0; round < 5; round++ {
		require.NoError(t, q.Enqueue(round))
		require.NoError(t, q.Enqueue(round+100))
		a, _ := q.Dequeue()
		b, _ := q.Dequeue()
		assert.Equal(t, round, a)
		assert.Equal(t, round+100, b)
	}
	assert.True(t, q.IsEmpty())
}
