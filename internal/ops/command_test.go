package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix shell semantics")
	}
}

func TestRunCommandRequiresCommandString(t *testing.T) {
	e, _ := newTestExecutor(t)
	got := e.RunCommand(map[string]any{})
	if got != "Error: 'command_string' is required for run_command." {
		t.Fatalf("got %q", got)
	}
}

func TestRunCommandRewritesCd(t *testing.T) {
	e, dir := newTestExecutor(t)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}
	got := e.RunCommand(map[string]any{"command_string": "cd sub"})
	want := "Success: Current working directory changed to '" + filepath.Join(dir, "sub") + "'."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunCommandForeground(t *testing.T) {
	skipOnWindows(t)
	e, _ := newTestExecutor(t)
	got := e.RunCommand(map[string]any{"command_string": "true", "interactive": true})
	if got != "Command 'true' completed with exit code 0" {
		t.Fatalf("got %q", got)
	}
	got = e.RunCommand(map[string]any{"command_string": "false", "interactive": true})
	if got != "Command 'false' completed with exit code 1" {
		t.Fatalf("got %q", got)
	}
}

func TestRunCommandBackground(t *testing.T) {
	skipOnWindows(t)
	e, _ := newTestExecutor(t)
	got := e.RunCommand(map[string]any{"command_string": "sleep 3", "interactive": false, "cid": "bg-1"})
	if !strings.HasPrefix(got, "Success: Command 'sleep 3' started with PID ") {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, "with CID: 'bg-1'") {
		t.Fatalf("cid missing from %q", got)
	}
	if e.sup.Count() != 1 {
		t.Fatalf("supervisor tracks %d processes, want 1", e.sup.Count())
	}
}

func TestRunCommandBackgroundRunsInSessionDir(t *testing.T) {
	skipOnWindows(t)
	e, dir := newTestExecutor(t)
	got := e.RunCommand(map[string]any{"command_string": "pwd", "interactive": false, "cid": "where"})
	if !strings.HasPrefix(got, "Success:") {
		t.Fatalf("got %q", got)
	}
	pid, err := e.sup.Find("where")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	st, _ := e.sup.Status(pid)
	joined := strings.Join(st.RecentOutput, "\n")
	if !strings.Contains(joined, dir) {
		t.Fatalf("pwd output %q does not mention session dir %q", joined, dir)
	}
}

func TestSendInputErrors(t *testing.T) {
	e, _ := newTestExecutor(t)

	got := e.SendInputToProcess(map[string]any{"pid_or_cid": "1234"})
	if got != "Error: 'input_data' is required for send_input_to_process." {
		t.Fatalf("got %q", got)
	}
	got = e.SendInputToProcess(map[string]any{"pid_or_cid": "1234", "input_data": "y"})
	if !strings.Contains(got, "No running processes available") {
		t.Fatalf("got %q", got)
	}
}

func TestSendInputUnknownListsProcesses(t *testing.T) {
	skipOnWindows(t)
	e, _ := newTestExecutor(t)
	e.RunCommand(map[string]any{"command_string": "sleep 3", "interactive": false, "cid": "bg-2"})

	got := e.SendInputToProcess(map[string]any{"pid_or_cid": "nope", "input_data": "y"})
	if !strings.Contains(got, "Available processes:") {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(got, "(CID: bg-2): sleep 3") {
		t.Fatalf("listing missing process detail: %q", got)
	}
}

func TestKillProcess(t *testing.T) {
	skipOnWindows(t)
	e, _ := newTestExecutor(t)
	e.RunCommand(map[string]any{"command_string": "sleep 30", "interactive": false, "cid": "victim"})

	got := e.KillProcess(map[string]any{"pid_or_cid": "victim"})
	if !strings.HasPrefix(got, "Success: Attempted to terminate process PID ") {
		t.Fatalf("got %q", got)
	}
	got = e.KillProcess(map[string]any{"pid_or_cid": "victim"})
	if !strings.Contains(got, "not found or not currently running") {
		t.Fatalf("got %q", got)
	}
}

func TestHandlersCoverAllCanonicalOps(t *testing.T) {
	e, _ := newTestExecutor(t)
	handlers := e.Handlers()
	if len(handlers) != 11 {
		t.Fatalf("handler table has %d entries, want 11", len(handlers))
	}
	for op, h := range handlers {
		if h == nil {
			t.Fatalf("nil handler for %s", op)
		}
	}
}
