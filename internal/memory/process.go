package memory

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Finder locates a running process by executable name.
type Finder interface {
	Find(ctx context.Context, names []string) (Process, error)
}

// SystemFinder enumerates the host's processes with gopsutil and opens the
// first match with the platform reader.
type SystemFinder struct{}

// Find returns ErrProcessNotFound when nothing matches. A matching process
// that cannot be opened is logged and skipped.
func (SystemFinder) Find(ctx context.Context, names []string) (Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if !matchesName(name, names) {
			continue
		}
		proc, err := openProcess(int(p.Pid), name)
		if err != nil {
			log.Printf("[memory] open %s (pid %d): %v", name, p.Pid, err)
			continue
		}
		return proc, nil
	}
	return nil, ErrProcessNotFound
}

// matchesName compares case-insensitively. Under Wine the kernel truncates
// comm to 15 bytes, so a candidate also matches when the observed name is
// a truncated prefix of it.
func matchesName(observed string, candidates []string) bool {
	observed = strings.ToLower(filepath.Base(observed))
	if observed == "" {
		return false
	}
	for _, c := range candidates {
		c = strings.ToLower(c)
		if observed == c {
			return true
		}
		if len(observed) == 15 && strings.HasPrefix(c, observed) {
			return true
		}
	}
	return false
}

// pidAlive is shared by the platform readers.
func pidAlive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}
