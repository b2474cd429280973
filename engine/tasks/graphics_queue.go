package tasks

import "sync"

// GraphicsQueue collects work that must run on the goroutine owning the
// graphics context. Any goroutine may Push, only the graphics goroutine Drains.
type GraphicsQueue struct {
	mu    sync.Mutex
	items []func()
}

func NewGraphicsQueue() *GraphicsQueue {
	return &GraphicsQueue{}
}

func (q *GraphicsQueue) Push(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

// Drain runs everything queued so far in FIFO order and returns how many
// items ran. Items pushed while draining wait for the next call.
func (q *GraphicsQueue) Drain() int {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for _, fn := range items {
		fn()
	}
	return len(items)
}

func (q *GraphicsQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
