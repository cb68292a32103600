package headerproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrySerializeDeserializeRoundtrips(t *testing.T) {
	var got int
	r := NewRegistry(2)
	r.Add(Field{
		ID:   "a",
		Size: 1,
		Send: func(cur *Cursor) { cur.Bytes(1)[0] = 0x42 },
		Recv: func(cur *Cursor) { got = int(cur.Bytes(1)[0]) },
	})
	r.Add(Field{
		ID:   "b",
		Size: 1,
		Send: func(cur *Cursor) { cur.Bytes(1)[0] = 0x7 },
	})

	buf := make([]byte, r.TotalSize())
	r.Serialize(buf)
	assert.Equal(t, []byte{0x42, 0x07}, buf)

	r.Deserialize(buf)
	assert.Equal(t, 0x42, got)
}

func TestRegistryTotalSizeSumsFields(t *testing.T) {
	r := NewRegistry(10)
	r.Add(Field{Size: 3})
	r.Add(Field{Size: 2})
	assert.Equal(t, 5, r.TotalSize())
}

func TestCursorAdvanceMovesPosition(t *testing.T) {
	c := NewCursor(make([]byte, 4))
	assert.Equal(t, 0, c.Pos())
	c.Advance(3)
	assert.Equal(t, 3, c.Pos())
}
