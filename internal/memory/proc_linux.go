//go:build linux

package memory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

type linuxProcess struct {
	pid  int
	name string

	mu  sync.Mutex
	mem *os.File
}

func openProcess(pid int, name string) (Process, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/mem", pid))
	if err != nil {
		return nil, fmt.Errorf("opening /proc/%d/mem: %w", pid, err)
	}
	return &linuxProcess{pid: pid, name: name, mem: f}, nil
}

func (p *linuxProcess) PID() int     { return p.pid }
func (p *linuxProcess) Name() string { return p.name }

func (p *linuxProcess) ReadMemory(addr uint64, buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mem == nil {
		return ErrProcessNotOpen
	}
	n, err := p.mem.ReadAt(buf, int64(addr))
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		return ErrAddressNotMapped
	}
	return fmt.Errorf("reading %d bytes at %#x: %w", len(buf), addr, err)
}

func (p *linuxProcess) Regions() ([]Region, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", p.pid))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMaps(f)
}

func (p *linuxProcess) Alive() bool {
	return pidAlive(p.pid)
}

func (p *linuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mem == nil {
		return nil
	}
	err := p.mem.Close()
	p.mem = nil
	return err
}

// parseMaps reads /proc/<pid>/maps lines of the form
// "start-end perms offset dev inode [path]".
func parseMaps(r io.Reader) ([]Region, error) {
	var regions []Region
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		// unreadable mappings would only fail later
		if !strings.HasPrefix(fields[1], "r") {
			continue
		}
		start, end, ok := strings.Cut(fields[0], "-")
		if !ok {
			continue
		}
		s, err := strconv.ParseUint(start, 16, 64)
		if err != nil {
			continue
		}
		e, err := strconv.ParseUint(end, 16, 64)
		if err != nil || e <= s {
			continue
		}
		regions = append(regions, Region{Start: s, Size: e - s})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning maps: %w", err)
	}
	return regions, nil
}
