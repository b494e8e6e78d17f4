// Package dispatch runs normalized actions against the operation
// handlers, one at a time, and aggregates their results into the single
// string that is fed back to the text generator.
package dispatch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/action"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/metrics"
)

// Handler executes one action and renders its outcome as a sentence.
type Handler func(args map[string]any) string

// Confirmer decides whether a destructive action may proceed.
type Confirmer interface {
	Confirm(name string, args map[string]any) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(name string, args map[string]any) bool

func (f ConfirmFunc) Confirm(name string, args map[string]any) bool { return f(name, args) }

// AutoApprove confirms every action. Used when the caller opted out of
// interactive confirmation.
var AutoApprove = ConfirmFunc(func(string, map[string]any) bool { return true })

// destructive lists the actions that require confirmation before running.
var destructive = map[string]bool{
	action.OpDeleteFile:   true,
	action.OpDeleteFolder: true,
}

type Dispatcher struct {
	handlers map[string]Handler
	confirm  Confirmer
}

// New builds a dispatcher over a handler table. A nil confirmer means
// every action is approved.
func New(handlers map[string]func(map[string]any) string, confirm Confirmer) *Dispatcher {
	if confirm == nil {
		confirm = AutoApprove
	}
	table := make(map[string]Handler, len(handlers))
	for name, h := range handlers {
		table[name] = h
	}
	return &Dispatcher{handlers: table, confirm: confirm}
}

// Dispatch runs the actions sequentially and returns one result string.
// A single action's result is returned verbatim; multiple results are
// joined under a summary header. A failing action never stops the batch.
func (d *Dispatcher) Dispatch(actions []action.Action) string {
	if len(actions) == 0 {
		return ""
	}
	results := make([]string, 0, len(actions))
	for _, a := range actions {
		results = append(results, d.runOne(a))
	}
	if len(results) == 1 {
		return results[0]
	}
	return "Multiple actions processed:\n- " + strings.Join(results, "\n- ")
}

func (d *Dispatcher) runOne(a action.Action) (result string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("action handler panicked", "action", a.Name, "panic", r)
			metrics.IncAction(a.Name, "panic")
			result = fmt.Sprintf("System Error: Exception during execution of action '%s': %v", a.Name, r)
		}
	}()

	h, ok := d.handlers[a.Name]
	if !ok {
		metrics.IncAction(a.Name, "unknown")
		return fmt.Sprintf("System Error: LLM requested unknown action '%s'. No action taken.", a.Name)
	}
	args := a.Args
	if args == nil {
		args = map[string]any{}
	}
	if destructive[a.Name] && !d.confirm.Confirm(a.Name, args) {
		metrics.IncAction(a.Name, "cancelled")
		return fmt.Sprintf("User cancelled action: %s", a.Name)
	}
	result = h(args)
	if strings.HasPrefix(result, "Error") || strings.HasPrefix(result, "System Error") {
		metrics.IncAction(a.Name, "error")
	} else {
		metrics.IncAction(a.Name, "ok")
	}
	return result
}
