package supervisor

import (
	"fmt"
	"strings"
)

// FormatReport renders the process snapshots the way they are shown to
// the model in the turn context.
func FormatReport(statuses []Status) string {
	var b strings.Builder
	b.WriteString("Running Processes:\n")
	if len(statuses) == 0 {
		b.WriteString("  None")
		return b.String()
	}
	hasInputWaiting := false
	for _, st := range statuses {
		cidInfo := ""
		if st.CID != "" {
			cidInfo = fmt.Sprintf("(CID: %s)", st.CID)
		}
		switch {
		case st.Completed:
			fmt.Fprintf(&b, "  - PID: %d %s (Completed, exit code %d): %s\n", st.PID, cidInfo, st.ExitCode, st.Command)
		case st.ExpectingInput:
			fmt.Fprintf(&b, "  - PID: %d %s [Running for %ds] (WAITING FOR INPUT): %s\n", st.PID, cidInfo, int(st.Uptime.Seconds()), st.Command)
			hasInputWaiting = true
		default:
			fmt.Fprintf(&b, "  - PID: %d %s [Running for %ds] (Running): %s\n", st.PID, cidInfo, int(st.Uptime.Seconds()), st.Command)
		}
		if len(st.RecentOutput) > 0 {
			for _, line := range st.RecentOutput {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		} else if !st.Completed {
			b.WriteString("    (No output captured yet)\n")
		}
	}
	if hasInputWaiting {
		b.WriteString("\n  HINT: One or more processes appear to be waiting for input. Use send_input_to_process function.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
