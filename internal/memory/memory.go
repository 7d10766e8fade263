// Package memory reads fixed-width values out of another process's address
// space and locates the process to read from.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrProcessNotFound is returned when no running process matches any of
	// the candidate names.
	ErrProcessNotFound = errors.New("process not found")

	// ErrProcessNotOpen is returned by reads on a process that was closed or
	// never opened.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrAddressNotMapped is returned when an address falls outside every
	// readable region.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrUnsupported is returned on platforms without a memory reader.
	ErrUnsupported = errors.New("process memory access not supported on this platform")

	// ErrRegionNotFound is returned by FindRegion when no region has the
	// requested size.
	ErrRegionNotFound = errors.New("memory region not found")
)

// Reader reads raw bytes at an absolute address. A read either fills buf
// completely or returns an error.
type Reader interface {
	ReadMemory(addr uint64, buf []byte) error
}

// Region is one contiguous mapping in the target's address space.
type Region struct {
	Start uint64
	Size  uint64
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Start + r.Size
}

// Contains reports whether [addr, addr+n) lies inside the region.
func (r Region) Contains(addr, n uint64) bool {
	return addr >= r.Start && addr+n <= r.End() && addr+n >= addr
}

// Process is an attached target process.
type Process interface {
	Reader
	PID() int
	Name() string
	Regions() ([]Region, error)
	Alive() bool
	Close() error
}

// ReadUint8 reads one byte.
func ReadUint8(r Reader, addr uint64) (uint8, error) {
	var buf [1]byte
	if err := r.ReadMemory(addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16BE reads a big-endian 16-bit value and returns it in native
// form. The game keeps its emulated 68000 RAM in big-endian order.
func ReadUint16BE(r Reader, addr uint64) (uint16, error) {
	var buf [2]byte
	if err := r.ReadMemory(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// FindRegion returns the first region of exactly size bytes.
func FindRegion(p Process, size uint64) (Region, error) {
	regions, err := p.Regions()
	if err != nil {
		return Region{}, fmt.Errorf("listing regions of pid %d: %w", p.PID(), err)
	}
	for _, r := range regions {
		if r.Size == size {
			return r, nil
		}
	}
	return Region{}, ErrRegionNotFound
}
