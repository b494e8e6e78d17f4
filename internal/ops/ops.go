// Package ops implements the operation handlers behind each canonical
// action. Handlers never return Go errors; every outcome is rendered as
// a descriptive sentence that is fed back to the text generator.
package ops

import (
	"strconv"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/action"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/session"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/supervisor"
)

// Executor binds the handlers to their collaborators: the session that
// owns the working directory and the supervisor that owns spawned
// processes.
type Executor struct {
	sess *session.Session
	sup  *supervisor.Supervisor
}

func NewExecutor(sess *session.Session, sup *supervisor.Supervisor) *Executor {
	return &Executor{sess: sess, sup: sup}
}

// Handlers returns the canonical-op handler table consumed by the
// dispatcher.
func (e *Executor) Handlers() map[string]func(map[string]any) string {
	return map[string]func(map[string]any) string{
		action.OpReadFile:           e.ReadFile,
		action.OpCreateFile:         e.CreateFile,
		action.OpUpdateFile:         e.UpdateFile,
		action.OpDeleteFile:         e.DeleteFile,
		action.OpCreateFolder:       e.CreateFolder,
		action.OpDeleteFolder:       e.DeleteFolder,
		action.OpListDirectory:      e.ListDirectory,
		action.OpChangeDirectory:    e.ChangeDirectory,
		action.OpRunCommand:         e.RunCommand,
		action.OpSendInputToProcess: e.SendInputToProcess,
		action.OpKillProcess:        e.KillProcess,
	}
}

func strArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg tolerates the float64 that encoding/json produces for numbers.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// idArg renders a process identifier argument, accepting both string CIDs
// and numeric PIDs.
func idArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return strconv.Itoa(int(v))
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}
