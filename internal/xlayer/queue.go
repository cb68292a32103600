package xlayer

// Queue is a bounded, intrusive doubly-linked FIFO of Descriptor nodes.
// The application enqueues TX frames and the MAC dequeues them, and the
// other way round for RX. Queue itself takes no lock, and neither the MAC
// nor the façade package wraps one around it; callers that share a Queue
// across goroutines must serialize access themselves.
type Queue struct {
	head, tail *Descriptor
	size       int
	maxSize    int
}

// NewQueue returns an empty queue bounded to maxSize entries.
func NewQueue(maxSize int) *Queue {
	return &Queue{maxSize: maxSize}
}

// Len returns the number of descriptors currently queued.
func (q *Queue) Len() int { return q.size }

// MaxSize returns the configured bound.
func (q *Queue) MaxSize() int { return q.maxSize }

// Enqueue appends a node at the tail. It returns false without modifying the
// queue if the queue is already at maxSize.
func (q *Queue) Enqueue(d *Descriptor) bool {
	if q.size >= q.maxSize {
		return false
	}
	d.next = nil
	d.prev = q.tail
	if q.tail != nil {
		q.tail.next = d
	} else {
		q.head = d
	}
	q.tail = d
	q.size++
	return true
}

// Dequeue removes and returns the head node, or nil if the queue is empty.
func (q *Queue) Dequeue() *Descriptor {
	d := q.head
	if d == nil {
		return nil
	}
	q.head = d.next
	if q.head != nil {
		q.head.prev = nil
	} else {
		q.tail = nil
	}
	d.next = nil
	d.prev = nil
	q.size--
	return d
}

// GetNode peeks at the head node without removing it.
func (q *Queue) GetNode() *Descriptor {
	return q.head
}

// IsEmpty reports whether the queue currently holds no nodes.
func (q *Queue) IsEmpty() bool { return q.size == 0 }
