package supervisor

import (
	"strings"
	"testing"
	"time"
)

func TestFormatReportEmpty(t *testing.T) {
	got := FormatReport(nil)
	want := "Running Processes:\n  None"
	if got != want {
		t.Fatalf("report = %q, want %q", got, want)
	}
}

func TestFormatReportRunningAndCompleted(t *testing.T) {
	statuses := []Status{
		{
			PID: 101, CID: "build", Command: "make all",
			Running: true, Uptime: 12 * time.Second,
			RecentOutput: []string{"[STDOUT] compiling"},
		},
		{
			PID: 102, Command: "echo hi",
			Completed: true, ExitCode: 0,
		},
	}
	got := FormatReport(statuses)
	for _, want := range []string{
		"- PID: 101 (CID: build) [Running for 12s] (Running): make all",
		"    [STDOUT] compiling",
		"- PID: 102  (Completed, exit code 0): echo hi",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "HINT") {
		t.Fatalf("no process waits for input, hint unexpected:\n%s", got)
	}
}

func TestFormatReportInputHint(t *testing.T) {
	statuses := []Status{
		{PID: 7, CID: "ask", Command: "deploy.sh", Running: true, ExpectingInput: true, Uptime: 3 * time.Second},
	}
	got := FormatReport(statuses)
	if !strings.Contains(got, "(WAITING FOR INPUT)") {
		t.Fatalf("report missing waiting marker:\n%s", got)
	}
	if !strings.Contains(got, "HINT: One or more processes appear to be waiting for input") {
		t.Fatalf("report missing input hint:\n%s", got)
	}
	if !strings.Contains(got, "(No output captured yet)") {
		t.Fatalf("report missing empty-output placeholder:\n%s", got)
	}
}
