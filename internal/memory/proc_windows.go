//go:build windows

package memory

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const stillActive = 259

type windowsProcess struct {
	pid  int
	name string

	mu     sync.Mutex
	handle windows.Handle
}

func openProcess(pid int, name string) (Process, error) {
	h, err := windows.OpenProcess(windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("OpenProcess: %w", err)
	}
	return &windowsProcess{pid: pid, name: name, handle: h}, nil
}

func (p *windowsProcess) PID() int     { return p.pid }
func (p *windowsProcess) Name() string { return p.name }

func (p *windowsProcess) ReadMemory(addr uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return ErrProcessNotOpen
	}
	var n uintptr
	if err := windows.ReadProcessMemory(p.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &n); err != nil {
		return fmt.Errorf("ReadProcessMemory at %#x: %w", addr, err)
	}
	if int(n) != len(buf) {
		return ErrAddressNotMapped
	}
	return nil
}

// Regions walks the address space with VirtualQueryEx, keeping committed
// pages that are not guard or no-access.
func (p *windowsProcess) Regions() ([]Region, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, ErrProcessNotOpen
	}

	var regions []Region
	var addr uintptr
	for {
		var mbi windows.MemoryBasicInformation
		if err := windows.VirtualQueryEx(p.handle, addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			break
		}
		if mbi.State == windows.MEM_COMMIT && mbi.Protect&(windows.PAGE_NOACCESS|windows.PAGE_GUARD) == 0 {
			regions = append(regions, Region{Start: uint64(mbi.BaseAddress), Size: uint64(mbi.RegionSize)})
		}
		next := mbi.BaseAddress + mbi.RegionSize
		if mbi.RegionSize == 0 || next <= addr {
			break
		}
		addr = next
	}
	return regions, nil
}

func (p *windowsProcess) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return false
	}
	var code uint32
	if err := windows.GetExitCodeProcess(p.handle, &code); err != nil {
		return pidAlive(p.pid)
	}
	return code == stillActive
}

func (p *windowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(p.handle)
	p.handle = 0
	return err
}
