// Package env composes the environment handed to spawned child processes:
// OS environment as the base, agent-wide overrides on top, then per-spawn
// entries, with simple ${VAR} expansion over the composed map.
package env

import (
	"os"
	"strings"
)

type Env struct {
	overrides map[string]string
	base      map[string]string
}

func New() *Env {
	return &Env{overrides: make(map[string]string)}
}

// Set registers an agent-wide override applied to every spawned process.
func (e *Env) Set(key, value string) {
	if key == "" {
		return
	}
	e.overrides[key] = value
}

// SetAll registers overrides given in "KEY=VALUE" form; malformed entries
// are skipped.
func (e *Env) SetAll(kvs []string) {
	for _, kv := range kvs {
		if i := strings.IndexByte(kv, '='); i > 0 {
			e.overrides[kv[:i]] = kv[i+1:]
		}
	}
}

// Merge builds the final "KEY=VALUE" slice for one spawn. Precedence, lowest
// first: OS environment, agent overrides, perSpawn entries.
func (e *Env) Merge(perSpawn []string) []string {
	if e.base == nil {
		e.base = make(map[string]string)
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i > 0 {
				e.base[kv[:i]] = kv[i+1:]
			}
		}
	}
	m := make(map[string]string, len(e.base)+len(e.overrides)+len(perSpawn))
	for k, v := range e.base {
		m[k] = v
	}
	for k, v := range e.overrides {
		m[k] = v
	}
	for _, kv := range perSpawn {
		if i := strings.IndexByte(kv, '='); i > 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+expand(v, m))
	}
	return out
}

// expand substitutes ${VAR} references using the composed map. One pass, no
// recursion.
func expand(s string, m map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	for k, v := range m {
		s = strings.ReplaceAll(s, "${"+k+"}", v)
	}
	return s
}
