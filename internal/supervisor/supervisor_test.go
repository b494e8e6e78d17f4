package supervisor

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process-group semantics are unix-only")
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestSpawnCapturesOutput(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn("echo hello-world", "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	st, ok := s.Status(pid)
	if !ok {
		t.Fatalf("status for pid %d missing", pid)
	}
	if st.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", st.ExitCode)
	}
	found := false
	for _, line := range st.RecentOutput {
		if line == "[STDOUT] hello-world" {
			found = true
		}
	}
	if !found {
		t.Fatalf("output %v missing tagged echo line", st.RecentOutput)
	}
}

func TestOutputLinesCapped(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn(`sh -c 'i=1; while [ $i -le 15 ]; do echo line$i; i=$((i+1)); done'`, "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	st, _ := s.Status(pid)
	if len(st.RecentOutput) != outputLineCap {
		t.Fatalf("kept %d lines, want %d", len(st.RecentOutput), outputLineCap)
	}
	if st.RecentOutput[0] != "[STDOUT] line6" {
		t.Fatalf("oldest kept line = %q, want line6", st.RecentOutput[0])
	}
	if st.RecentOutput[outputLineCap-1] != "[STDOUT] line15" {
		t.Fatalf("newest kept line = %q, want line15", st.RecentOutput[outputLineCap-1])
	}
}

func TestStderrTagged(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn(`sh -c 'echo oops >&2'`, "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	st, _ := s.Status(pid)
	found := false
	for _, line := range st.RecentOutput {
		if line == "[STDERR] oops" {
			found = true
		}
	}
	if !found {
		t.Fatalf("output %v missing tagged stderr line", st.RecentOutput)
	}
}

func TestPromptDetectionAndSendInput(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn(`sh -c 'echo "Continue? (y/n)"; read ans; echo "got $ans"'`, "ask", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.ExpectingInput
	})

	got, err := s.SendInput("ask", "y")
	if err != nil {
		t.Fatalf("send input: %v", err)
	}
	if got != pid {
		t.Fatalf("resolved pid %d, want %d", got, pid)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	st, _ := s.Status(pid)
	joined := strings.Join(st.RecentOutput, "\n")
	if !strings.Contains(joined, "got y") {
		t.Fatalf("output %q missing echoed input", joined)
	}
	if st.ExpectingInput {
		t.Fatal("expecting-input flag should clear after completion")
	}
}

func TestFindByIdentifier(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	if _, err := s.Find("123"); !errors.Is(err, ErrNoProcesses) {
		t.Fatalf("empty supervisor: err = %v, want ErrNoProcesses", err)
	}

	pid, err := s.Spawn("sleep 5", "build-1", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if got, err := s.Find(fmt.Sprintf("%d", pid)); err != nil || got != pid {
		t.Fatalf("find by pid = (%d, %v), want (%d, nil)", got, err, pid)
	}
	if got, err := s.Find("build-1"); err != nil || got != pid {
		t.Fatalf("find by cid = (%d, %v), want (%d, nil)", got, err, pid)
	}
	// Running but not waiting for input: a blank identifier must not match.
	if _, err := s.Find(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank identifier: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Find("no-such"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown identifier: err = %v, want ErrNotFound", err)
	}
}

func TestFindFallsBackToSingleWaiting(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn(`sh -c 'echo "Enter name: "; read n'`, "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.ExpectingInput
	})
	got, err := s.Find("")
	if err != nil || got != pid {
		t.Fatalf("fallback = (%d, %v), want (%d, nil)", got, err, pid)
	}
}

func TestKillLongRunning(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn("sleep 30", "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	got, outcome, err := s.Kill(fmt.Sprintf("%d", pid))
	if err != nil {
		t.Fatalf("kill: %v", err)
	}
	if got != pid {
		t.Fatalf("killed pid %d, want %d", got, pid)
	}
	if outcome != KilledGracefully && outcome != KilledForced {
		t.Fatalf("outcome = %v, want graceful or forced", outcome)
	}
	if s.Count() != 0 {
		t.Fatalf("record not removed after kill, %d tracked", s.Count())
	}
}

func TestKillEscalatesToSigkill(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn(`sh -c 'trap "" TERM; while true; do sleep 1; done'`, "stubborn", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	_, outcome, err := s.Kill("stubborn")
	if err != nil {
		t.Fatalf("kill: %v", err)
	}
	if outcome != KilledForced {
		t.Fatalf("outcome = %v, want KilledForced", outcome)
	}
	_ = pid
}

func TestSignaledExitReportedNegative(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn(`sh -c 'kill -9 $$'`, "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	st, _ := s.Status(pid)
	if st.ExitCode != -9 {
		t.Fatalf("exit code = %d, want -9", st.ExitCode)
	}
}

func TestSendInputToCompleted(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn("true", "done-cid", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	if _, err := s.SendInput("done-cid", "hi"); !errors.Is(err, ErrCompleted) {
		t.Fatalf("err = %v, want ErrCompleted", err)
	}
}

func TestExitDetectedWhileGrandchildHoldsPipes(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	// The shell exits immediately; the backgrounded sleep inherits the
	// output pipes and keeps them open well past the shell's death.
	pid, err := s.Spawn(`sh -c 'sleep 5 & echo started'`, "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	st, _ := s.Status(pid)
	if st.Running {
		t.Fatal("shell has exited but record still reports running")
	}
	if st.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", st.ExitCode)
	}
	found := false
	for _, line := range st.RecentOutput {
		if line == "[STDOUT] started" {
			found = true
		}
	}
	if !found {
		t.Fatalf("output %v missing line printed before the fork", st.RecentOutput)
	}
}

func TestRefreshAllReapsAfterGrace(t *testing.T) {
	requireUnix(t)
	s := New(Config{ReapGrace: 100 * time.Millisecond})
	defer s.ShutdownAll()

	pid, err := s.Spawn("echo done", "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	if got := s.RefreshAll(); len(got) != 1 {
		t.Fatalf("within grace: %d records, want 1", len(got))
	}
	time.Sleep(200 * time.Millisecond)
	if got := s.RefreshAll(); len(got) != 0 {
		t.Fatalf("past grace: %d records, want 0", len(got))
	}
	if s.Count() != 0 {
		t.Fatalf("reaped record still counted, %d tracked", s.Count())
	}
}

func TestRefreshAllKeepsRecentlyCompleted(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn("echo done", "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool {
		st, ok := s.Status(pid)
		return ok && st.Completed
	})
	statuses := s.RefreshAll()
	if len(statuses) != 1 || statuses[0].PID != pid {
		t.Fatalf("recently completed process missing from refresh: %+v", statuses)
	}
	if statuses[0].Running {
		t.Fatal("completed process reported as running")
	}
}

func TestLongRunningSurvivesRefresh(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn("sleep 5", "bg", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	statuses := s.RefreshAll()
	if len(statuses) != 1 {
		t.Fatalf("tracked %d processes, want 1", len(statuses))
	}
	st := statuses[0]
	if !st.Running || st.Completed {
		t.Fatalf("sleep should still be running: %+v", st)
	}
	if st.PID != pid || st.CID != "bg" {
		t.Fatalf("snapshot mismatch: %+v", st)
	}
}

func TestShutdownAllClears(t *testing.T) {
	requireUnix(t)
	s := New(Config{})

	for i := 0; i < 3; i++ {
		if _, err := s.Spawn("sleep 30", "", ""); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}
	if s.Count() != 3 {
		t.Fatalf("tracked %d, want 3", s.Count())
	}
	s.ShutdownAll()
	if s.Count() != 0 {
		t.Fatalf("tracked %d after shutdown, want 0", s.Count())
	}
}

func TestSpawnGeneratesCID(t *testing.T) {
	requireUnix(t)
	s := New(Config{})
	defer s.ShutdownAll()

	pid, err := s.Spawn("sleep 5", "", "")
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	st, _ := s.Status(pid)
	if !strings.HasPrefix(st.CID, "proc-") {
		t.Fatalf("generated cid = %q, want proc- prefix", st.CID)
	}
}
