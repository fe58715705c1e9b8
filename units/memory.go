package units

import "fmt"

// Memory is the shared byte-addressable, little-endian backing store
// for both instruction and data accesses. Its interface mirrors the
// Read8/16/32/64 and Write8/16/32/64 shape used throughout the
// reference emulator this package generalizes from, narrowed to the
// byte and 8-byte-word granularities Y86-64 actually uses.
type Memory struct {
	bytes []byte
}

// NewMemory allocates a zeroed memory of the given byte capacity.
func NewMemory(size int) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Size reports the memory's capacity in bytes.
func (m *Memory) Size() int { return len(m.bytes) }

// InBounds reports whether an n-byte access starting at addr stays
// within the memory.
func (m *Memory) InBounds(addr uint64, n uint64) bool {
	if addr > uint64(len(m.bytes)) {
		return false
	}
	end := addr + n
	return end >= addr && end <= uint64(len(m.bytes))
}

// ReadByte reads a single byte. addr must be in bounds.
func (m *Memory) ReadByte(addr uint64) (uint8, error) {
	if !m.InBounds(addr, 1) {
		return 0, fmt.Errorf("units: memory read out of bounds at %#x", addr)
	}
	return m.bytes[addr], nil
}

// WriteByte writes a single byte. addr must be in bounds.
func (m *Memory) WriteByte(addr uint64, v uint8) error {
	if !m.InBounds(addr, 1) {
		return fmt.Errorf("units: memory write out of bounds at %#x", addr)
	}
	m.bytes[addr] = v
	return nil
}

// ReadWord reads an 8-byte little-endian word.
func (m *Memory) ReadWord(addr uint64) (uint64, error) {
	if !m.InBounds(addr, 8) {
		return 0, fmt.Errorf("units: memory read out of bounds at %#x", addr)
	}
	var w uint64
	for i := 0; i < 8; i++ {
		w |= uint64(m.bytes[addr+uint64(i)]) << (8 * uint(i))
	}
	return w, nil
}

// WriteWord writes an 8-byte little-endian word.
func (m *Memory) WriteWord(addr uint64, v uint64) error {
	if !m.InBounds(addr, 8) {
		return fmt.Errorf("units: memory write out of bounds at %#x", addr)
	}
	for i := 0; i < 8; i++ {
		m.bytes[addr+uint64(i)] = uint8(v >> (8 * uint(i)))
	}
	return nil
}

// LoadImage copies a raw object image into memory starting at address 0.
func (m *Memory) LoadImage(data []byte) error {
	if len(data) > len(m.bytes) {
		return fmt.Errorf("units: object image (%d bytes) exceeds memory size (%d bytes)", len(data), len(m.bytes))
	}
	copy(m.bytes, data)
	return nil
}
