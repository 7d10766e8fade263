package memory

import (
	"encoding/binary"
	"sync"
)

// Buffer is a Process backed by a single in-memory region. It stands in for
// the game in tests and in mock mode.
type Buffer struct {
	mu     sync.RWMutex
	pid    int
	name   string
	region Region
	data   []byte
	alive  bool
	closed bool
	fail   map[uint64]bool // addresses whose reads fail
}

// NewBuffer returns a live process with one zeroed region of size bytes
// mapped at start.
func NewBuffer(pid int, name string, start, size uint64) *Buffer {
	return &Buffer{
		pid:    pid,
		name:   name,
		region: Region{Start: start, Size: size},
		data:   make([]byte, size),
		alive:  true,
		fail:   make(map[uint64]bool),
	}
}

func (b *Buffer) PID() int     { return b.pid }
func (b *Buffer) Name() string { return b.name }

func (b *Buffer) ReadMemory(addr uint64, buf []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrProcessNotOpen
	}
	if !b.region.Contains(addr, uint64(len(buf))) {
		return ErrAddressNotMapped
	}
	for i := range buf {
		if b.fail[addr+uint64(i)] {
			return ErrAddressNotMapped
		}
	}
	off := addr - b.region.Start
	copy(buf, b.data[off:off+uint64(len(buf))])
	return nil
}

func (b *Buffer) Regions() ([]Region, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrProcessNotOpen
	}
	return []Region{b.region}, nil
}

func (b *Buffer) Alive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.alive && !b.closed
}

func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Exit marks the process as gone.
func (b *Buffer) Exit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alive = false
}

// Put8 stores v at addr. Out-of-range writes are ignored.
func (b *Buffer) Put8(addr uint64, v uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.region.Contains(addr, 1) {
		b.data[addr-b.region.Start] = v
	}
}

// Put16BE stores v big-endian at addr.
func (b *Buffer) Put16BE(addr uint64, v uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.region.Contains(addr, 2) {
		off := addr - b.region.Start
		binary.BigEndian.PutUint16(b.data[off:off+2], v)
	}
}

// FailAt makes reads touching addr fail until cleared with ok=false.
func (b *Buffer) FailAt(addr uint64, failing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if failing {
		b.fail[addr] = true
	} else {
		delete(b.fail, addr)
	}
}
