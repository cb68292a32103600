package xlayer

import "errors"

// ErrPoolExhausted is returned when a Pool has no free descriptors left.
var ErrPoolExhausted = errors.New("xlayer: pool exhausted")

// Pool is a fixed-capacity free-list of Descriptor nodes. It is allocated
// once, from a caller-sized capacity, and never grows: GetFreeNode detaches
// a node from the free list, Release returns it. Node storage is one
// preallocated slice, so no allocation happens after NewPool/NewPoolWithHeaderData
// return, matching the "no dynamic allocation after init" non-goal.
//
// For RX pools, each node additionally gets a fixed backing buffer (one
// header+payload slot) reserved at pool-creation time, per
// init_pool_with_header_data in the source spec; TX nodes instead reserve
// their bytes from a shared Arena (see arena.go) when they are populated.
type Pool struct {
	nodes     []Descriptor
	backing   [][]byte // nil entries for TX-style pools
	freeHead  *Descriptor
	freeCount int
}

// NewPool allocates a TX-style pool: capacity nodes, no per-node backing
// storage (TX nodes borrow bytes from a shared Arena instead).
func NewPool(capacity, maxFrameSize int) *Pool {
	return newPool(capacity, maxFrameSize, 0, 0)
}

// NewPoolWithHeaderData allocates an RX-style pool: capacity nodes, each
// with its own backing buffer large enough for headerSize+payloadSize bytes
// plus one length-prefix byte between header and payload, where
// SetReceivedPayload reads the payload length.
func NewPoolWithHeaderData(capacity, headerSize, payloadSize int) *Pool {
	return newPool(capacity, headerSize+payloadSize+1, headerSize, payloadSize)
}

func newPool(capacity, maxFrameSize, headerSize, payloadSize int) *Pool {
	p := &Pool{
		nodes: make([]Descriptor, capacity),
	}
	if headerSize > 0 || payloadSize > 0 {
		p.backing = make([][]byte, capacity)
	}
	for i := capacity - 1; i >= 0; i-- {
		d := &p.nodes[i]
		d.poolIndex = i
		d.MaxFrameSize = maxFrameSize
		d.HeaderMemorySize = headerSize
		d.PayloadMemorySize = payloadSize
		if p.backing != nil {
			p.backing[i] = make([]byte, maxFrameSize)
		}
		d.Reset()
		d.next = p.freeHead
		d.prev = nil
		p.freeHead = d
	}
	p.freeCount = capacity
	return p
}

// Capacity returns the total number of nodes owned by the pool.
func (p *Pool) Capacity() int { return len(p.nodes) }

// FreeCount returns the number of nodes currently available.
func (p *Pool) FreeCount() int { return p.freeCount }

// Backing returns the RX backing buffer for a descriptor, or nil for a
// TX-style pool.
func (p *Pool) Backing(d *Descriptor) []byte {
	if p.backing == nil {
		return nil
	}
	return p.backing[d.poolIndex]
}

// GetFreeNode detaches and returns a node from the free list, or nil if the
// pool is exhausted.
func (p *Pool) GetFreeNode() *Descriptor {
	if p.freeHead == nil {
		return nil
	}
	d := p.freeHead
	p.freeHead = d.next
	d.next = nil
	d.prev = nil
	d.inUse = true
	d.Reset()
	p.freeCount--
	return d
}

// Release returns a node to the free list. It is the caller's responsibility
// to have first removed the node from any Queue it was enqueued on.
func (p *Pool) Release(d *Descriptor) {
	if d == nil || !d.inUse {
		return
	}
	d.inUse = false
	d.next = p.freeHead
	d.prev = nil
	p.freeHead = d
	p.freeCount++
}
