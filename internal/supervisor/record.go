package supervisor

import (
	"io"
	"strings"
	"time"
)

const (
	// Number of recent output lines retained per process.
	outputLineCap = 10
	// Bytes read per chunk from a process stream.
	readChunkSize = 1024
	// Default for Config.ReapGrace: how long a completed process stays
	// visible in status reports before its record is reaped.
	reapGrace = 60 * time.Second
	// Wait after SIGTERM, and again after SIGKILL, before giving up.
	termWait = 500 * time.Millisecond
)

// promptKeywords are scanned (lowercased) against stdout lines to guess
// whether a process is waiting for user input. Best effort only.
var promptKeywords = []string{"? ", "y/n", "(y/n)", "select", "choose", "password", "enter", "continue"}

type outputEvent struct {
	stream string // "stdout" or "stderr"
	chunk  string
}

// Record tracks one spawned process. All fields are owned by the
// Supervisor and must only be touched while holding its lock; the reader
// and waiter goroutines communicate through the events and exit channels
// instead of mutating the record. The waiter reports cmd.Wait directly,
// so completion is observed even while forked grandchildren keep the
// output pipes open.
type Record struct {
	PID            int
	CID            string
	Command        string
	StartTime      time.Time
	OutputLines    []string
	ExpectingInput bool
	Completed      bool
	ExitCode       int
	CompletionTime time.Time

	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
	events chan outputEvent
	exit   chan int

	outMirror io.WriteCloser
	errMirror io.WriteCloser
}

func (r *Record) appendChunk(ev outputEvent) {
	for _, line := range strings.Split(ev.chunk, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tag := "[STDOUT]"
		mirror := r.outMirror
		if ev.stream == "stderr" {
			tag = "[STDERR]"
			mirror = r.errMirror
		}
		r.OutputLines = append(r.OutputLines, tag+" "+line)
		if len(r.OutputLines) > outputLineCap {
			r.OutputLines = r.OutputLines[len(r.OutputLines)-outputLineCap:]
		}
		if mirror != nil {
			_, _ = io.WriteString(mirror, line+"\n")
		}
		if ev.stream == "stdout" && looksLikePrompt(line) {
			r.ExpectingInput = true
		}
	}
}

func (r *Record) markCompleted(code int) {
	if r.Completed {
		return
	}
	r.Completed = true
	r.ExitCode = code
	r.CompletionTime = time.Now()
	r.ExpectingInput = false
}

// waitExit blocks up to d for the waiter goroutine to report an exit
// code. Only call from the control path; it competes with drain for the
// one buffered exit value.
func (r *Record) waitExit(d time.Duration) (int, bool) {
	select {
	case code := <-r.exit:
		return code, true
	case <-time.After(d):
		return 0, false
	}
}

// closeIO releases the record's pipe ends and mirrors. Closing the read
// ends unblocks the reader goroutines when a grandchild still holds the
// write side.
func (r *Record) closeIO() {
	if r.stdin != nil {
		_ = r.stdin.Close()
	}
	if r.stdout != nil {
		_ = r.stdout.Close()
	}
	if r.stderr != nil {
		_ = r.stderr.Close()
	}
	if r.outMirror != nil {
		_ = r.outMirror.Close()
	}
	if r.errMirror != nil {
		_ = r.errMirror.Close()
	}
}

func looksLikePrompt(line string) bool {
	low := strings.ToLower(line)
	for _, kw := range promptKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}
