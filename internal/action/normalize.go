package action

import (
	"log/slog"
	"strings"
)

// Normalize canonicalizes one candidate action in place and returns it.
// It never fails: an unrecognized operation name passes through untouched so
// the dispatcher can report it explicitly instead of silently dropping it.
func Normalize(a Action) Action {
	if a.Args == nil {
		a.Args = map[string]any{}
	}

	// A run_command whose command text is really a shell navigation is
	// rewritten to change_directory before anything else looks at it.
	if rewritten, ok := RewriteChdir(a); ok {
		a = rewritten
	}

	if canonical, ok := opAliases[a.Name]; ok {
		slog.Debug("normalized operation name", "from", a.Name, "to", canonical)
		a.Name = canonical
	}

	if table, ok := paramAliases[a.Name]; ok {
		for canonical, variants := range table {
			if _, present := a.Args[canonical]; present {
				continue
			}
			for _, variant := range variants {
				if variant == canonical {
					continue
				}
				if v, present := a.Args[variant]; present {
					// Copy, do not delete: downstream code may still read
					// the original key.
					a.Args[canonical] = v
					slog.Debug("normalized argument key", "from", variant, "to", canonical)
					break
				}
			}
		}
	}

	switch a.Name {
	case OpRunCommand:
		if _, ok := a.Args["interactive"]; !ok {
			a.Args["interactive"] = true
		}
		// A top-level correlation id belongs with the command arguments.
		if a.CID != "" {
			if _, ok := a.Args["cid"]; !ok {
				a.Args["cid"] = a.CID
			}
		}
	case OpCreateFolder:
		if _, ok := a.Args["path"]; !ok {
			slog.Warn("create_folder candidate missing path argument")
		}
	}

	return a
}

// RewriteChdir converts a run_command action whose command text starts with
// "cd " into the equivalent change_directory action. The second return value
// reports whether a rewrite happened. The run_command handler repeats the
// check for actions that bypassed normalization.
func RewriteChdir(a Action) (Action, bool) {
	name := a.Name
	if alias, ok := opAliases[name]; ok {
		name = alias
	}
	if name != OpRunCommand || a.Args == nil {
		return a, false
	}
	cmd, ok := a.Args["command_string"].(string)
	if !ok {
		cmd, ok = a.Args["command"].(string)
	}
	if !ok {
		return a, false
	}
	trimmed := strings.TrimSpace(cmd)
	if !strings.HasPrefix(trimmed, "cd ") {
		return a, false
	}
	target := strings.TrimSpace(trimmed[3:])
	slog.Debug("rewriting shell navigation to change_directory", "path", target)
	a.Name = OpChangeDirectory
	a.Args = map[string]any{"path": target}
	return a, true
}

// NormalizeAll normalizes a batch, preserving order.
func NormalizeAll(in []Action) []Action {
	if len(in) == 0 {
		return nil
	}
	out := make([]Action, 0, len(in))
	for _, a := range in {
		out = append(out, Normalize(a))
	}
	return out
}
