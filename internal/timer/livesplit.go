package timer

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	liveSplitIOTimeout  = 2 * time.Second
	liveSplitRedialWait = 5 * time.Second
)

// LiveSplit drives a LiveSplit Server component over TCP. Commands are
// CRLF-terminated lines; getcurrenttimerphase answers with one line.
type LiveSplit struct {
	addr string

	mu          sync.Mutex
	conn        net.Conn
	rd          *bufio.Reader
	retryAfter  time.Time
	lastDialErr string
	now         func() time.Time
	dial        func(addr string) (net.Conn, error)
}

// NewLiveSplit returns a client for addr, e.g. "localhost:16834". It does not
// connect until first used.
func NewLiveSplit(addr string) *LiveSplit {
	return &LiveSplit{
		addr: addr,
		now:  time.Now,
		dial: func(addr string) (net.Conn, error) {
			return net.DialTimeout("tcp", addr, liveSplitIOTimeout)
		},
	}
}

func (l *LiveSplit) State() State {
	reply, err := l.query("getcurrenttimerphase")
	if err != nil {
		return Unavailable
	}
	switch reply {
	case "NotRunning":
		return NotRunning
	case "Running":
		return Running
	case "Paused":
		return Paused
	case "Ended":
		return Ended
	default:
		log.Printf("[livesplit] unexpected timer phase %q", reply)
		return Unavailable
	}
}

func (l *LiveSplit) Start() { l.command("starttimer") }
func (l *LiveSplit) Split() { l.command("split") }
func (l *LiveSplit) Reset() { l.command("reset") }

// Close drops the connection.
func (l *LiveSplit) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropLocked()
}

func (l *LiveSplit) command(cmd string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writeLocked(cmd); err != nil {
		log.Printf("[livesplit] %s: %v", cmd, err)
	}
}

func (l *LiveSplit) query(cmd string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writeLocked(cmd); err != nil {
		return "", err
	}
	l.conn.SetReadDeadline(l.now().Add(liveSplitIOTimeout))
	line, err := l.rd.ReadString('\n')
	if err != nil {
		l.dropLocked()
		return "", fmt.Errorf("reading reply to %s: %w", cmd, err)
	}
	return strings.TrimSpace(line), nil
}

func (l *LiveSplit) writeLocked(cmd string) error {
	if err := l.connectLocked(); err != nil {
		return err
	}
	l.conn.SetWriteDeadline(l.now().Add(liveSplitIOTimeout))
	if _, err := l.conn.Write([]byte(cmd + "\r\n")); err != nil {
		l.dropLocked()
		return fmt.Errorf("writing %s: %w", cmd, err)
	}
	return nil
}

// connectLocked dials if needed. After a failed dial it waits
// liveSplitRedialWait before trying again, so a missing server costs one
// dial per wait period rather than one per tick.
func (l *LiveSplit) connectLocked() error {
	if l.conn != nil {
		return nil
	}
	now := l.now()
	if now.Before(l.retryAfter) {
		return fmt.Errorf("livesplit server %s unavailable", l.addr)
	}
	conn, err := l.dial(l.addr)
	if err != nil {
		l.retryAfter = now.Add(liveSplitRedialWait)
		if msg := err.Error(); msg != l.lastDialErr {
			log.Printf("[livesplit] dial %s: %v", l.addr, err)
			l.lastDialErr = msg
		}
		return fmt.Errorf("dialing %s: %w", l.addr, err)
	}
	if l.lastDialErr != "" {
		log.Printf("[livesplit] connected to %s", l.addr)
	}
	l.lastDialErr = ""
	l.conn = conn
	l.rd = bufio.NewReader(conn)
	return nil
}

func (l *LiveSplit) dropLocked() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	l.rd = nil
	return err
}
