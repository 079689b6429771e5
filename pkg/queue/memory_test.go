package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue[string](2)

	assert.NoError(t, q.Enqueue("a"))
	assert.NoError(t, q.Enqueue("b"))
	assert.ErrorIs(t, q.Enqueue("c"), ErrQueueFull)
	assert.Equal(t, 2, q.Size())

	assert.Equal(t, []string{"a", "b"}, q.ReadAllMessages())
	assert.Empty(t, q.ReadAllMessages())

	assert.NoError(t, q.Enqueue("d"))
	q.ClearQueue()
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue[int](100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, q.Enqueue(i*10+j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, q.ReadAllMessages(), 100)
}
