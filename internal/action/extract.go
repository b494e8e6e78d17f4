package action

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

// The generator is an unreliable upstream: payloads arrive fenced or bare,
// as arrays, single objects, wrapper objects, or several concatenated
// objects, and any of them may be malformed. Extraction therefore works in
// two phases: a balanced-delimiter scan locates the candidate region, then a
// strict parse runs with a small, enumerated set of textual repairs.
// Structural failure is never an error here; it degrades to "no actions".

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Extract pulls an ordered list of candidate actions out of raw generator
// output. A nil result means the text is conversational, not a failure.
func Extract(text string) []Action {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return parsePayload(m[1])
	}

	// Unfenced: only when the whole response is the payload.
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return parsePayload(trimmed)
	}
	return nil
}

// parsePayload handles the three recognized shapes: a JSON array, a single
// object (possibly a wrapper around an array), and adjacent bare objects.
func parsePayload(s string) []Action {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "["):
		region, ok := balancedRegion(s, '[', ']')
		if !ok {
			return nil
		}
		return decodeArray(region)
	case strings.HasPrefix(s, "{"):
		if repaired, ok := joinAdjacentObjects(s); ok {
			slog.Debug("repaired adjacent JSON objects into array")
			return decodeArray(repaired)
		}
		region, ok := balancedRegion(s, '{', '}')
		if !ok {
			return nil
		}
		return decodeObject(region)
	default:
		return nil
	}
}

// balancedRegion returns the substring from the first open delimiter to its
// matching close, tracking string literals and escapes so nested braces and
// quoted text do not confuse the scan.
func balancedRegion(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// joinAdjacentObjects repairs the "}{"-adjacency shape the generator
// sometimes produces (several top-level objects with no enclosing array) by
// inserting separating commas and wrapping the whole thing in brackets.
// The scan is string-aware so literal "}{" inside values is left alone.
// Returns ok=false when the input is a single well-delimited object.
func joinAdjacentObjects(s string) (string, bool) {
	var b strings.Builder
	depth := 0
	inString := false
	escaped := false
	joined := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		b.WriteByte(c)
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				// Look past whitespace for the start of another object.
				j := i + 1
				for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
					j++
				}
				if j < len(s) && s[j] == '{' {
					b.WriteByte(',')
					joined = true
					i = j - 1
				}
			}
		}
	}
	if !joined {
		return "", false
	}
	return "[" + b.String() + "]", true
}

func decodeArray(s string) []Action {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		slog.Debug("action array did not parse", "error", err)
		return nil
	}
	out := make([]Action, 0, len(raw))
	for _, item := range raw {
		if a, ok := decodeCandidate(item); ok {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func decodeObject(s string) []Action {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		slog.Debug("action object did not parse", "error", err)
		return nil
	}

	// Wrapper objects: {"action":"multiple_actions","actions":[...]} and the
	// bare "action_items"/"commands" variants all unwrap to their list.
	for _, key := range wrapperKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			continue
		}
		if key == "actions" {
			var name string
			if nameRaw, ok := obj["action"]; !ok || json.Unmarshal(nameRaw, &name) != nil || name != "multiple_actions" {
				continue
			}
		}
		slog.Debug("unwrapped action list", "key", key, "count", len(list))
		out := make([]Action, 0, len(list))
		for _, item := range list {
			if a, ok := decodeCandidate(item); ok {
				out = append(out, a)
			}
		}
		if len(out) > 0 {
			return out
		}
		return nil
	}

	whole, _ := json.Marshal(obj)
	if a, ok := decodeCandidate(whole); ok {
		return []Action{a}
	}
	return nil
}

// decodeCandidate turns one JSON value into an Action. Non-object values and
// objects without a string "action" field are dropped silently.
func decodeCandidate(raw json.RawMessage) (Action, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Action{}, false
	}
	name, ok := m["action"].(string)
	if !ok || name == "" {
		return Action{}, false
	}
	a := Action{Name: name, Args: map[string]any{}}
	if args, ok := m["args"].(map[string]any); ok {
		a.Args = args
	}
	if cid, ok := m["cid"].(string); ok {
		a.CID = cid
	}
	return a, true
}
