package scache

// ByteView is an immutable view of a cached byte value. The server stores
// remote values as ByteView so callers never share the backing array.
type ByteView struct {
	b []byte
}

func NewByteView(b []byte) *ByteView {
	return &ByteView{CloneBytes(b)}
}

func (b ByteView) Len() int {
	return len(b.b)
}

func (b ByteView) String() string {
	return string(b.b)
}

func (b ByteView) Clone() []byte {
	return CloneBytes(b.b)
}

func CloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
