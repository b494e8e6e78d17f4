package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOperationSynonym(t *testing.T) {
	a := Normalize(Action{Name: "make_directory", Args: map[string]any{"folder": "x"}})
	assert.Equal(t, OpCreateFolder, a.Name)
	assert.Equal(t, "x", a.Args["path"], "synonym key should be copied to canonical")
	assert.Equal(t, "x", a.Args["folder"], "original alias key must be retained")
}

func TestNormalizeFirstPresentSynonymWins(t *testing.T) {
	a := Normalize(Action{Name: OpCreateFile, Args: map[string]any{
		"file_path": "first.txt",
		"filename":  "second.txt",
	}})
	assert.Equal(t, "first.txt", a.Args["path"])
}

func TestNormalizeExistingCanonicalKeyNotOverwritten(t *testing.T) {
	a := Normalize(Action{Name: OpCreateFile, Args: map[string]any{
		"path":      "keep.txt",
		"file_path": "ignore.txt",
	}})
	assert.Equal(t, "keep.txt", a.Args["path"])
}

func TestNormalizeChdirRewrite(t *testing.T) {
	a := Normalize(Action{Name: OpRunCommand, Args: map[string]any{"command_string": "cd foo"}})
	require.Equal(t, OpChangeDirectory, a.Name)
	assert.Equal(t, "foo", a.Args["path"])
}

func TestNormalizeChdirRewriteThroughAlias(t *testing.T) {
	a := Normalize(Action{Name: "exec", Args: map[string]any{"command": "cd ../up "}})
	require.Equal(t, OpChangeDirectory, a.Name)
	assert.Equal(t, "../up", a.Args["path"])
}

func TestNormalizeRunCommandDefaults(t *testing.T) {
	a := Normalize(Action{Name: "shell", Args: map[string]any{"cmd": "ls -la"}, CID: "ls-001"})
	require.Equal(t, OpRunCommand, a.Name)
	assert.Equal(t, "ls -la", a.Args["command_string"])
	assert.Equal(t, true, a.Args["interactive"], "interactive defaults to true")
	assert.Equal(t, "ls-001", a.Args["cid"], "top-level cid lands in args")
}

func TestNormalizeInteractiveNotOverridden(t *testing.T) {
	a := Normalize(Action{Name: OpRunCommand, Args: map[string]any{
		"command_string": "sleep 5",
		"interactive":    false,
	}})
	assert.Equal(t, false, a.Args["interactive"])
}

func TestNormalizeUnknownNamePassesThrough(t *testing.T) {
	a := Normalize(Action{Name: "frobnicate", Args: map[string]any{"x": 1}})
	assert.Equal(t, "frobnicate", a.Name, "unknown names surface at dispatch, not here")
}

func TestNormalizeNilArgs(t *testing.T) {
	a := Normalize(Action{Name: "cat"})
	assert.Equal(t, OpReadFile, a.Name)
	assert.NotNil(t, a.Args)
}

func TestAliasTablesTargetCanonicalOps(t *testing.T) {
	canon := map[string]bool{}
	for _, op := range CanonicalOps {
		canon[op] = true
	}
	for alias, target := range opAliases {
		assert.Truef(t, canon[target], "alias %q maps to non-canonical %q", alias, target)
	}
	require.Len(t, paramAliases, len(CanonicalOps))
	for op, table := range paramAliases {
		assert.Truef(t, canon[op], "parameter table for non-canonical op %q", op)
		for param, variants := range table {
			assert.Containsf(t, variants, param, "op %s param %s: canonical name missing from its own synonym list", op, param)
		}
	}
}
