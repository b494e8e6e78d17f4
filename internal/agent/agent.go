// Package agent runs the conversation turn loop: assemble context, call
// the text generator, extract and dispatch the actions it requested, and
// carry the aggregated result into the next turn.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/action"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/dispatch"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/history"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/metrics"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/session"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/supervisor"
)

// Generator produces one model response for a fully assembled prompt.
// Network clients implement this; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

const (
	defaultMaxRetries = 3
	maxBackoff        = 30 * time.Second
	// Longest result text kept in audit events.
	maxAuditResult = 500
)

type Config struct {
	Generator  Generator
	Session    *session.Session
	Supervisor *supervisor.Supervisor
	Dispatcher *dispatch.Dispatcher
	History    history.Sink
	MaxRetries int
}

type Agent struct {
	gen        Generator
	sess       *session.Session
	sup        *supervisor.Supervisor
	disp       *dispatch.Dispatcher
	hist       history.Sink
	maxRetries int

	lastResult string
}

func New(cfg Config) *Agent {
	hist := cfg.History
	if hist == nil {
		hist = history.Nop{}
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	return &Agent{
		gen:        cfg.Generator,
		sess:       cfg.Session,
		sup:        cfg.Supervisor,
		disp:       cfg.Dispatcher,
		hist:       hist,
		maxRetries: retries,
		lastResult: "System initialized.",
	}
}

// Turn is the outcome of one conversation turn.
type Turn struct {
	Response string // raw generator output
	Result   string // aggregated action result, or the conversational marker
	Actions  int    // number of actions dispatched
}

// RunTurn assembles the context prompt for userInput, queries the
// generator with retries, then extracts, normalizes and dispatches any
// actions found in the response. The returned Turn carries the result
// string that seeds the next turn's context.
func (a *Agent) RunTurn(ctx context.Context, userInput string) (Turn, error) {
	start := time.Now()
	defer func() { metrics.ObserveTurnDuration(time.Since(start).Seconds()) }()

	prompt := a.BuildPrompt(userInput)
	response, err := a.generate(ctx, prompt)
	if err != nil {
		a.lastResult = fmt.Sprintf("System Error: Gemini API call failed: %v", err)
		return Turn{}, err
	}

	actions := action.Extract(response)
	if len(actions) == 0 {
		metrics.IncExtraction("none")
		a.lastResult = "Conversational response provided."
		return Turn{Response: response, Result: a.lastResult}, nil
	}
	metrics.IncExtraction("actions")

	normalized := action.NormalizeAll(actions)
	result := a.disp.Dispatch(normalized)
	a.recordActions(ctx, normalized, result)
	a.lastResult = result
	return Turn{Response: response, Result: result, Actions: len(normalized)}, nil
}

// generate calls the generator with bounded exponential backoff.
func (a *Agent) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			slog.Warn("generator call failed, retrying", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		response, err := a.gen.Generate(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("generator failed after %d attempts: %w", a.maxRetries, lastErr)
}

// BuildPrompt renders the context block handed to the generator: working
// directory, directory tree, process report, previous result, input
// hints, and finally the user request.
func (a *Agent) BuildPrompt(userInput string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Current Directory: %s]\n", a.sess.Cwd())
	b.WriteString(a.sess.DirectoryTree())
	b.WriteString("\n\n")

	statuses := a.sup.RefreshAll()
	fmt.Fprintf(&b, "[Running Processes Info]:\n%s\n\n", supervisor.FormatReport(statuses))

	if a.lastResult != "" {
		fmt.Fprintf(&b, "[Previous Action Result]: %s\n\n", a.lastResult)
	}
	for _, st := range statuses {
		if !st.ExpectingInput {
			continue
		}
		cidStr := ""
		if st.CID != "" {
			cidStr = fmt.Sprintf(" (CID: %s)", st.CID)
		}
		fmt.Fprintf(&b, "HINT: Process PID %d%s appears to be waiting for input. Use send_input_to_process!\n", st.PID, cidStr)
	}
	fmt.Fprintf(&b, "User request: %s\n", userInput)
	return b.String()
}

func (a *Agent) recordActions(ctx context.Context, actions []action.Action, result string) {
	if len(result) > maxAuditResult {
		result = result[:maxAuditResult]
	}
	for _, act := range actions {
		e := history.Event{
			Type:       history.EventAction,
			OccurredAt: time.Now().UTC(),
			Action:     act.Name,
			Result:     result,
		}
		if err := a.hist.Send(ctx, e); err != nil {
			slog.Warn("history sink send failed", "action", act.Name, "error", err)
		}
	}
}

// LastResult returns the result string carried into the next turn.
func (a *Agent) LastResult() string { return a.lastResult }

// Shutdown terminates every tracked process. Called on exit or interrupt.
func (a *Agent) Shutdown() {
	a.sup.ShutdownAll()
}
