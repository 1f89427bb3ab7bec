package item

import (
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// MarshalData serializes the persistent tag bag of the stack to NBT. An empty bag produces a nil slice.
func (s Stack) MarshalData() ([]byte, error) {
	if len(s.data) == 0 {
		return nil, nil
	}
	return nbt.MarshalEncoding(s.data, nbt.LittleEndian)
}

// WithData returns a copy of the stack with its persistent tag bag replaced by the NBT data passed,
// typically previously produced by MarshalData.
func (s Stack) WithData(b []byte) (Stack, error) {
	if len(b) == 0 {
		s.data = nil
		return s, nil
	}
	var m map[string]any
	if err := nbt.UnmarshalEncoding(b, &m, nbt.LittleEndian); err != nil {
		return s, err
	}
	s.data = m
	return s, nil
}
