package ops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/supervisor"
)

// RunCommand executes a shell command. interactive=true (the default)
// runs it in the foreground wired to the terminal; interactive=false
// spawns it under the supervisor and returns immediately with the PID.
// A "cd <dir>" command is routed to ChangeDirectory instead of spawning
// a shell whose directory change would be lost.
func (e *Executor) RunCommand(args map[string]any) string {
	command := strArg(args, "command_string")
	if command == "" {
		return "Error: 'command_string' is required for run_command."
	}
	if rest, ok := strings.CutPrefix(strings.TrimSpace(command), "cd "); ok {
		return e.ChangeDirectory(map[string]any{"path": strings.TrimSpace(rest)})
	}

	if boolArg(args, "interactive", true) {
		return e.runForeground(command)
	}

	cid := strArg(args, "cid")
	pid, err := e.sup.Spawn(command, cid, e.sess.Cwd())
	if err != nil {
		return fmt.Sprintf("Error running command '%s': %v", command, err)
	}
	if st, ok := e.sup.Status(pid); ok {
		cid = st.CID
	}
	return fmt.Sprintf("Success: Command '%s' started with PID %d with CID: '%s'. Output will be tracked.", command, pid, cid)
}

func (e *Executor) runForeground(command string) string {
	cmd := supervisor.BuildCommand(command)
	cmd.Dir = e.sess.Cwd()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			return fmt.Sprintf("Error running command '%s': %v", command, err)
		}
	}
	return fmt.Sprintf("Command '%s' completed with exit code %d", command, code)
}

func (e *Executor) SendInputToProcess(args map[string]any) string {
	identifier := idArg(args, "pid_or_cid")
	input, ok := args["input_data"].(string)
	if !ok {
		return "Error: 'input_data' is required for send_input_to_process."
	}
	pid, err := e.sup.SendInput(identifier, input)
	switch {
	case err == nil:
		return fmt.Sprintf("Success: Input sent to process PID %d.", pid)
	case errors.Is(err, supervisor.ErrCompleted):
		return fmt.Sprintf("Error: Process PID %d has already terminated. Cannot send input.", pid)
	case errors.Is(err, supervisor.ErrNoProcesses):
		return fmt.Sprintf("Error: Process with PID/CID '%s' not found. No running processes available.", identifier)
	case errors.Is(err, supervisor.ErrNotFound), errors.Is(err, supervisor.ErrAmbiguous):
		return fmt.Sprintf("Error: Process with PID/CID '%s' not found. Available processes:%s", identifier, processListing(e.sup))
	default:
		return fmt.Sprintf("Error sending input to process '%s': %v", identifier, err)
	}
}

func (e *Executor) KillProcess(args map[string]any) string {
	identifier := idArg(args, "pid_or_cid")
	pid, outcome, err := e.sup.Kill(identifier)
	if err != nil {
		return fmt.Sprintf("Error: Process with PID/CID '%s' not found or not currently running.", identifier)
	}
	if outcome == supervisor.KillUnconfirmed {
		return fmt.Sprintf("Warning: Process PID %d might not have terminated after SIGKILL.", pid)
	}
	return fmt.Sprintf("Success: Attempted to terminate process PID %d.", pid)
}

func processListing(sup *supervisor.Supervisor) string {
	lines := sup.DescribeAll()
	if len(lines) == 0 {
		return " none"
	}
	return "\n    - " + strings.Join(lines, "\n    - ")
}
