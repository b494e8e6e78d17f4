package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/env"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/history"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/logger"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/metrics"
	"github.com/google/uuid"
)

// Delay after spawning a process or writing to its stdin before draining,
// so fast commands have a chance to produce output.
const settleDelay = 200 * time.Millisecond

var (
	ErrNoProcesses = errors.New("no processes are currently tracked")
	ErrNotFound    = errors.New("no tracked process matches the identifier")
	ErrAmbiguous   = errors.New("identifier matches multiple processes")
	ErrCompleted   = errors.New("process has already completed")
)

// Status is a point-in-time snapshot of one tracked process.
type Status struct {
	PID            int           `json:"pid"`
	CID            string        `json:"cid,omitempty"`
	Command        string        `json:"command"`
	Running        bool          `json:"running"`
	ExpectingInput bool          `json:"expecting_input"`
	Completed      bool          `json:"completed"`
	ExitCode       int           `json:"exit_code"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    time.Time     `json:"completed_at,omitempty"`
	Uptime         time.Duration `json:"uptime"`
	RecentOutput   []string      `json:"recent_output,omitempty"`
}

// KillOutcome reports how a termination attempt concluded.
type KillOutcome int

const (
	KilledGracefully KillOutcome = iota // exited after SIGTERM
	KilledForced                        // exited after SIGKILL
	KillUnconfirmed                     // no exit observed; record dropped anyway
	AlreadyExited                       // process had completed before the attempt
)

// Config carries supervisor collaborators. The zero value is usable.
type Config struct {
	Env     *env.Env      // extra environment merged into spawned commands
	Log     logger.Config // optional per-process output mirrors
	History history.Sink  // optional audit sink for lifecycle events

	// ReapGrace is how long a completed record stays visible before
	// RefreshAll removes it. Zero means the 60s default.
	ReapGrace time.Duration
}

// Supervisor owns every background process spawned by the agent. All
// record state is mutated under its lock; per-process goroutines only
// feed channels. Methods are safe for concurrent use.
type Supervisor struct {
	mu    sync.Mutex
	procs map[int]*Record
	env   *env.Env
	log   logger.Config
	hist  history.Sink
	grace time.Duration
}

func New(cfg Config) *Supervisor {
	grace := cfg.ReapGrace
	if grace <= 0 {
		grace = reapGrace
	}
	return &Supervisor{
		procs: make(map[int]*Record),
		env:   cfg.Env,
		log:   cfg.Log,
		hist:  cfg.History,
		grace: grace,
	}
}

// audit ships a lifecycle event to the history sink without blocking the
// control path. Failures are logged, never surfaced.
func (s *Supervisor) audit(e history.Event) {
	if s.hist == nil {
		return
	}
	e.OccurredAt = time.Now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.hist.Send(ctx, e); err != nil {
			slog.Warn("history sink send failed", "type", string(e.Type), "error", err)
		}
	}()
}

// Spawn starts command in its own process group and begins tracking it.
// If cid is empty a short correlation id is generated. Returns the PID.
func (s *Supervisor) Spawn(command, cid, dir string) (int, error) {
	cmd := BuildCommand(command)
	if dir != "" {
		cmd.Dir = dir
	}
	if s.env != nil {
		cmd.Env = s.env.Merge(nil)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("stdin pipe: %w", err)
	}
	// The pipes are created by hand so Wait reports the child's exit as
	// soon as it happens. StdoutPipe would tie Wait to EOF on the read
	// ends, and a backgrounded grandchild inheriting them keeps those
	// open long after the child is gone.
	outR, outW, err := os.Pipe()
	if err != nil {
		return 0, fmt.Errorf("stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		_ = outR.Close()
		_ = outW.Close()
		return 0, fmt.Errorf("stderr pipe: %w", err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW
	if err := cmd.Start(); err != nil {
		_ = outR.Close()
		_ = outW.Close()
		_ = errR.Close()
		_ = errW.Close()
		return 0, fmt.Errorf("start %q: %w", command, err)
	}
	// Drop the parent's write ends; the child (and whatever it forked)
	// holds the only remaining copies.
	_ = outW.Close()
	_ = errW.Close()

	if cid == "" {
		cid = "proc-" + uuid.NewString()[:8]
	}
	rec := &Record{
		PID:       cmd.Process.Pid,
		CID:       cid,
		Command:   command,
		StartTime: time.Now(),
		stdin:     stdin,
		stdout:    outR,
		stderr:    errR,
		events:    make(chan outputEvent, 256),
		exit:      make(chan int, 1),
	}
	if mOut, mErr, werr := s.log.Writers(fmt.Sprintf("%s-%d", cid, rec.PID)); werr == nil {
		rec.outMirror = mOut
		rec.errMirror = mErr
	}

	go readStream("stdout", outR, rec)
	go readStream("stderr", errR, rec)
	go func() {
		err := cmd.Wait()
		rec.exit <- exitCodeFrom(cmd, err)
	}()

	s.mu.Lock()
	s.procs[rec.PID] = rec
	metrics.IncProcessStart()
	metrics.SetTrackedProcesses(len(s.procs))
	s.mu.Unlock()
	s.audit(history.Event{Type: history.EventProcessStart, PID: rec.PID, CID: cid, Command: command})

	time.Sleep(settleDelay)
	s.mu.Lock()
	s.drainLocked(rec)
	s.mu.Unlock()
	return rec.PID, nil
}

func readStream(stream string, r io.Reader, rec *Record) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			rec.events <- outputEvent{stream: stream, chunk: string(buf[:n])}
		}
		if err != nil {
			return
		}
	}
}

func exitCodeFrom(cmd *exec.Cmd, err error) int {
	if ps := cmd.ProcessState; ps != nil {
		if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return -int(ws.Signal())
			}
			return ws.ExitStatus()
		}
		return ps.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

// drainLocked moves any pending output and an exit notification into the
// record without blocking. Caller holds s.mu.
func (s *Supervisor) drainLocked(rec *Record) {
drain:
	for {
		select {
		case ev := <-rec.events:
			rec.appendChunk(ev)
		default:
			break drain
		}
	}
	if !rec.Completed {
		select {
		case code := <-rec.exit:
			rec.markCompleted(code)
			s.audit(history.Event{Type: history.EventProcessExit, PID: rec.PID, CID: rec.CID, Command: rec.Command, ExitCode: code})
		default:
		}
	}
}

func snapshot(rec *Record, now time.Time) Status {
	st := Status{
		PID:            rec.PID,
		CID:            rec.CID,
		Command:        rec.Command,
		Running:        !rec.Completed,
		ExpectingInput: rec.ExpectingInput,
		Completed:      rec.Completed,
		ExitCode:       rec.ExitCode,
		StartedAt:      rec.StartTime,
		CompletedAt:    rec.CompletionTime,
		Uptime:         now.Sub(rec.StartTime).Truncate(time.Second),
		RecentOutput:   append([]string(nil), rec.OutputLines...),
	}
	return st
}

// Status drains and snapshots a single process by PID.
func (s *Supervisor) Status(pid int) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.procs[pid]
	if !ok {
		return Status{}, false
	}
	s.drainLocked(rec)
	return snapshot(rec, time.Now()), true
}

// RefreshAll drains every tracked process and returns snapshots sorted by
// PID. Records completed for longer than the grace period are reaped and
// omitted from the result.
func (s *Supervisor) RefreshAll() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	pids := make([]int, 0, len(s.procs))
	for pid := range s.procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	out := make([]Status, 0, len(pids))
	for _, pid := range pids {
		rec := s.procs[pid]
		s.drainLocked(rec)
		if rec.Completed && now.Sub(rec.CompletionTime) > s.grace {
			rec.closeIO()
			delete(s.procs, pid)
			continue
		}
		out = append(out, snapshot(rec, now))
	}
	metrics.SetTrackedProcesses(len(s.procs))
	return out
}

// Find resolves an identifier to a tracked PID. The identifier is matched
// as an exact PID first, then as an exact CID. An empty identifier, or one
// with no match, falls back to the single tracked process iff it is the
// only one and is expecting input.
func (s *Supervisor) Find(identifier string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(identifier)
}

func (s *Supervisor) findLocked(identifier string) (int, error) {
	if len(s.procs) == 0 {
		return 0, ErrNoProcesses
	}
	if identifier != "" {
		if pid, err := strconv.Atoi(identifier); err == nil {
			if _, ok := s.procs[pid]; ok {
				return pid, nil
			}
		}
		for pid, rec := range s.procs {
			if rec.CID != "" && rec.CID == identifier {
				return pid, nil
			}
		}
	}
	// Fall back to the single process waiting for input.
	var waiting []int
	for pid, rec := range s.procs {
		s.drainLocked(rec)
		if !rec.Completed && rec.ExpectingInput {
			waiting = append(waiting, pid)
		}
	}
	if len(waiting) == 1 {
		return waiting[0], nil
	}
	if len(waiting) > 1 {
		return 0, ErrAmbiguous
	}
	return 0, ErrNotFound
}

// SendInput resolves the identifier, writes input (newline-terminated) to
// the process stdin, waits briefly and drains. Returns the resolved PID.
func (s *Supervisor) SendInput(identifier, input string) (int, error) {
	s.mu.Lock()
	pid, err := s.findLocked(identifier)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	rec := s.procs[pid]
	s.drainLocked(rec)
	if rec.Completed {
		s.mu.Unlock()
		return pid, fmt.Errorf("pid %d: %w", pid, ErrCompleted)
	}
	if !strings.HasSuffix(input, "\n") {
		input += "\n"
	}
	if _, err := io.WriteString(rec.stdin, input); err != nil {
		s.mu.Unlock()
		return pid, fmt.Errorf("write to pid %d: %w", pid, err)
	}
	rec.ExpectingInput = false
	s.mu.Unlock()

	time.Sleep(settleDelay)
	s.mu.Lock()
	s.drainLocked(rec)
	s.mu.Unlock()
	return pid, nil
}

// Kill terminates the process resolved from identifier: SIGTERM to the
// process group, a short wait, then SIGKILL if needed. The record is
// removed regardless of whether the exit was confirmed.
func (s *Supervisor) Kill(identifier string) (int, KillOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pid, err := s.findLocked(identifier)
	if err != nil {
		return 0, KillUnconfirmed, err
	}
	rec := s.procs[pid]
	s.drainLocked(rec)
	outcome := s.terminateLocked(rec)
	rec.closeIO()
	delete(s.procs, pid)
	metrics.IncProcessKill()
	metrics.SetTrackedProcesses(len(s.procs))
	s.audit(history.Event{Type: history.EventProcessKill, PID: pid, CID: rec.CID, Command: rec.Command, ExitCode: rec.ExitCode})
	return pid, outcome, nil
}

func (s *Supervisor) terminateLocked(rec *Record) KillOutcome {
	if rec.Completed {
		return AlreadyExited
	}
	_ = syscall.Kill(-rec.PID, syscall.SIGTERM)
	if code, ok := rec.waitExit(termWait); ok {
		rec.markCompleted(code)
		return KilledGracefully
	}
	_ = syscall.Kill(-rec.PID, syscall.SIGKILL)
	if code, ok := rec.waitExit(termWait); ok {
		rec.markCompleted(code)
		return KilledForced
	}
	slog.Warn("process did not confirm exit after SIGKILL", "pid", rec.PID, "cid", rec.CID)
	return KillUnconfirmed
}

// ShutdownAll terminates every live process and drops all records. Used
// on agent exit.
func (s *Supervisor) ShutdownAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pid, rec := range s.procs {
		s.drainLocked(rec)
		if !rec.Completed {
			outcome := s.terminateLocked(rec)
			if outcome == KillUnconfirmed {
				slog.Warn("process survived shutdown", "pid", pid, "command", rec.Command)
			}
		}
		rec.closeIO()
		delete(s.procs, pid)
	}
	metrics.SetTrackedProcesses(0)
}

// DescribeAll returns one short line per tracked process, for inclusion
// in error messages when an identifier cannot be resolved.
func (s *Supervisor) DescribeAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	pids := make([]int, 0, len(s.procs))
	for pid := range s.procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	out := make([]string, 0, len(pids))
	for _, pid := range pids {
		rec := s.procs[pid]
		out = append(out, fmt.Sprintf("PID %d (CID: %s): %s", pid, rec.CID, rec.Command))
	}
	return out
}

// Count reports how many processes are currently tracked.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}
