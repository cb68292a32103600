// Package headerproto assembles and parses the small, composable set of
// header fields that ride in front of every frame's payload: which fields
// appear, and in what order, is chosen per connection by a Config, and both
// ends of a link must agree on that Config or the wire will desync.
package headerproto

// Cursor is the mutable read/write position into a header byte buffer that
// each Field's Send/Receive callback advances past its own bytes.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for header encode/decode starting at offset 0.
func NewCursor(buf []byte) *Cursor { return &Cursor{buf: buf} }

// Pos returns the current byte offset.
func (c *Cursor) Pos() int { return c.pos }

// Advance moves the cursor forward n bytes, past a field just written or
// read.
func (c *Cursor) Advance(n int) { c.pos += n }

// Bytes returns the n bytes starting at the cursor, without advancing.
func (c *Cursor) Bytes(n int) []byte { return c.buf[c.pos : c.pos+n] }

// Field is one registered header protocol: a fixed-size slot with a send
// callback (invoked during serialization) and a receive callback (invoked
// during deserialization). Either callback may be nil for a one-directional
// field.
type Field struct {
	ID   string
	Size int
	Send func(cur *Cursor)
	Recv func(cur *Cursor)
}

// Registry holds an ordered list of header fields and serializes/
// deserializes a header buffer by running them in registration order. The
// receiving side must register the identical field sequence: field i's
// bytes mean nothing on their own, only by position.
type Registry struct {
	fields     []Field
	bufferSize int
}

// NewRegistry builds an empty registry sized for a header buffer of
// bufferSize bytes; Add calls must not exceed that total.
func NewRegistry(bufferSize int) *Registry {
	return &Registry{bufferSize: bufferSize}
}

// Add appends a field to the registration order.
func (r *Registry) Add(f Field) {
	r.fields = append(r.fields, f)
}

// TotalSize returns the sum of every registered field's size, which must
// equal the connection's declared header_length.
func (r *Registry) TotalSize() int {
	total := 0
	for _, f := range r.fields {
		total += f.Size
	}
	return total
}

// BufferSize returns the header buffer capacity this registry was sized
// for.
func (r *Registry) BufferSize() int { return r.bufferSize }

// Serialize runs every field's Send callback in registration order,
// writing into buf (which must be at least TotalSize() bytes).
func (r *Registry) Serialize(buf []byte) {
	cur := NewCursor(buf)
	for _, f := range r.fields {
		if f.Send != nil {
			f.Send(cur)
		}
		cur.Advance(f.Size)
	}
}

// Deserialize runs every field's Recv callback in registration order,
// mirroring the sender's field layout exactly.
func (r *Registry) Deserialize(buf []byte) {
	cur := NewCursor(buf)
	for _, f := range r.fields {
		if f.Recv != nil {
			f.Recv(cur)
		}
		cur.Advance(f.Size)
	}
}
