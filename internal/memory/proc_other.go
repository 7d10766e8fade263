//go:build !linux && !windows

package memory

func openProcess(pid int, name string) (Process, error) {
	return nil, ErrUnsupported
}
