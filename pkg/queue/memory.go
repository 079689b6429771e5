package queue

// InMemoryQueue implements a channel backed queue. It is safe for
// concurrent producers; ReadAllMessages is meant for a single consumer.
type InMemoryQueue[T any] struct {
	ch chan T
}

var _ Queue[int] = &InMemoryQueue[int]{}

// NewInMemoryQueue creates a new queue holding at most size items.
func NewInMemoryQueue[T any](size int) *InMemoryQueue[T] {
	return &InMemoryQueue[T]{
		ch: make(chan T, size),
	}
}

// Enqueue adds an item to the end of the queue without blocking.
func (q *InMemoryQueue[T]) Enqueue(item T) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	return len(q.ch)
}

// ReadAllMessages reads the messages pending at the time of the call, in order.
func (q *InMemoryQueue[T]) ReadAllMessages() []T {
	n := len(q.ch)
	messages := make([]T, 0, n)
	for i := 0; i < n; i++ {
		select {
		case m := <-q.ch:
			messages = append(messages, m)
		default:
			return messages
		}
	}
	return messages
}

// ClearQueue drops all pending messages.
func (q *InMemoryQueue[T]) ClearQueue() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}
