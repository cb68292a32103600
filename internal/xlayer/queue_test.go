package xlayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueFIFOOrder(t *testing.T) {
	p := NewPool(4, 32)
	q := NewQueue(4)

	var ds []*Descriptor
	for i := 0; i < 4; i++ {
		d := p.GetFreeNode()
		d.RetryCount = i
		ds = append(ds, d)
		assert.True(t, q.Enqueue(d))
	}

	assert.Equal(t, 4, q.Len())

	for i := 0; i < 4; i++ {
		out := q.Dequeue()
		assert.Equal(t, i, out.RetryCount)
	}
	assert.True(t, q.IsEmpty())
	assert.Nil(t, q.Dequeue())
}

func TestQueueRejectsOverflow(t *testing.T) {
	p := NewPool(2, 32)
	q := NewQueue(1)

	assert.True(t, q.Enqueue(p.GetFreeNode()))
	assert.False(t, q.Enqueue(p.GetFreeNode()), "queue must refuse beyond max_size")
	assert.Equal(t, 1, q.Len())
}

func TestQueuePeekDoesNotRemove(t *testing.T) {
	p := NewPool(1, 32)
	q := NewQueue(1)
	d := p.GetFreeNode()
	q.Enqueue(d)

	assert.Same(t, d, q.GetNode())
	assert.Equal(t, 1, q.Len(), "peek must not dequeue")
}
