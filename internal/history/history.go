// Package history defines the audit-event model for agent activity and
// the sink interface its storage backends implement.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of audit event.
type EventType string

const (
	// EventAction records one dispatched action and its result.
	EventAction EventType = "action"
	// EventProcessStart records a command spawned by the supervisor.
	EventProcessStart EventType = "process_start"
	// EventProcessExit records an observed completion.
	EventProcessExit EventType = "process_exit"
	// EventProcessKill records an explicit termination.
	EventProcessKill EventType = "process_kill"
)

// Event is one audit record. Action-typed events fill Action/Result;
// process-typed events fill PID/CID/Command and, for exits, ExitCode.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Action     string    `json:"action,omitempty"`
	Result     string    `json:"result,omitempty"`
	PID        int       `json:"pid,omitempty"`
	CID        string    `json:"cid,omitempty"`
	Command    string    `json:"command,omitempty"`
	ExitCode   int       `json:"exit_code,omitempty"`
}

// Sink is a destination for audit events (databases, search indices).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Send(context.Context, Event) error { return nil }
