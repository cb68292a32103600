package mac

import "sync"

// CallbackKind discriminates the application-facing events the MAC worker
// delivers; the IRQ path never calls these directly, only enqueues them.
type CallbackKind uint8

const (
	CallbackRxSuccess CallbackKind = iota
	CallbackTxSuccess
	CallbackTxFail
	CallbackTxDrop
	CallbackRangingDataReady
	CallbackEvent
)

// Callback is one queued unit of deferred work: which connection it
// concerns, what kind of event, and the thunk the worker invokes. Fn is
// built by the caller closing over whatever descriptor/connection state the
// application callback needs.
type Callback struct {
	ConnectionID uint16
	Kind         CallbackKind
	Fn           func()
}

// ErrCallbackQueueFull is returned by Enqueue when the bounded queue is at
// capacity — per the concurrency model, overflow here is a fatal
// programmer error the caller must size its queue against, not something
// the MAC retries.
var ErrCallbackQueueFull = errQueueFull{}

type errQueueFull struct{}

func (errQueueFull) Error() string { return "mac: callback queue full" }

// CallbackQueue is a bounded FIFO of deferred application callbacks,
// enqueued from the radio IRQ path and drained by a dedicated worker
// goroutine. The mutex-protected queue plus condition-variable wake-up
// mirrors a classic producer/single-consumer transmit queue: the producer
// never blocks, and the consumer sleeps when there is nothing to do instead
// of polling.
type CallbackQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []Callback
	head int
	size int
}

// NewCallbackQueue builds a queue with room for capacity pending callbacks.
func NewCallbackQueue(capacity int) *CallbackQueue {
	q := &CallbackQueue{buf: make([]Callback, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a callback, waking one blocked Drain call. It returns
// ErrCallbackQueueFull if the queue is already at capacity.
func (q *CallbackQueue) Enqueue(cb Callback) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.buf) {
		return ErrCallbackQueueFull
	}
	tail := (q.head + q.size) % len(q.buf)
	q.buf[tail] = cb
	q.size++
	q.cond.Signal()
	return nil
}

// Drain blocks until at least one callback is queued, then removes and
// returns every callback currently queued, oldest first. Callers run in a
// loop: `for { for _, cb := range q.Drain() { cb.Fn() } }`.
func (q *CallbackQueue) Drain() []Callback {
	q.mu.Lock()
	for q.size == 0 {
		q.cond.Wait()
	}

	out := make([]Callback, q.size)
	for i := 0; i < q.size; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.head = 0
	q.size = 0
	q.mu.Unlock()

	return out
}

// Len reports how many callbacks are currently queued.
func (q *CallbackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}
