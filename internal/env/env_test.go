package env

import (
	"strings"
	"testing"
)

func find(env []string, key string) (string, bool) {
	for _, kv := range env {
		if strings.HasPrefix(kv, key+"=") {
			return strings.TrimPrefix(kv, key+"="), true
		}
	}
	return "", false
}

func TestMergePrecedence(t *testing.T) {
	t.Setenv("AGENT_ENV_TEST", "from-os")
	e := New()
	e.Set("AGENT_ENV_TEST", "from-agent")
	got, _ := find(e.Merge(nil), "AGENT_ENV_TEST")
	if got != "from-agent" {
		t.Fatalf("agent override should win over OS: %q", got)
	}
	got, _ = find(e.Merge([]string{"AGENT_ENV_TEST=from-spawn"}), "AGENT_ENV_TEST")
	if got != "from-spawn" {
		t.Fatalf("per-spawn entry should win: %q", got)
	}
}

func TestMergeExpansion(t *testing.T) {
	e := New()
	e.Set("APP_ROOT", "/srv/app")
	e.Set("APP_LOGS", "${APP_ROOT}/logs")
	got, ok := find(e.Merge(nil), "APP_LOGS")
	if !ok || got != "/srv/app/logs" {
		t.Fatalf("expansion failed: %q", got)
	}
}

func TestSetAllSkipsMalformed(t *testing.T) {
	e := New()
	e.SetAll([]string{"GOOD=1", "no-equals", "=empty-key"})
	env := e.Merge(nil)
	if got, ok := find(env, "GOOD"); !ok || got != "1" {
		t.Fatalf("GOOD missing: %v", env)
	}
	if _, ok := find(env, ""); ok {
		t.Fatal("empty key should be skipped")
	}
}
