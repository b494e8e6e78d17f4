package cliagent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractActions(t *testing.T) {
	text := "Setting up.\n```json\n{\"action\": \"mkdir\", \"args\": {\"dir_path\": \"src\"}}\n```"
	actions := ExtractActions(text)
	require.Len(t, actions, 1)
	assert.Equal(t, "create_folder", actions[0].Name)
	assert.Equal(t, "src", actions[0].Args["path"])
}

func TestEngineRunTurn(t *testing.T) {
	dir := t.TempDir()
	gen := GeneratorFunc(func(_ context.Context, _ string) (string, error) {
		return "```json\n{\"action\": \"create_file\", \"args\": {\"path\": \"x.txt\", \"content\": \"payload\"}}\n```", nil
	})
	e, err := NewEngine(EngineConfig{Generator: gen, WorkDir: dir})
	require.NoError(t, err)
	defer e.Shutdown()

	turn, err := e.RunTurn(context.Background(), "write a file")
	require.NoError(t, err)
	assert.Equal(t, 1, turn.Actions)

	data, err := os.ReadFile(filepath.Join(dir, "x.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, dir, e.Cwd())
	assert.Empty(t, e.Processes())
}

func TestEngineRouter(t *testing.T) {
	gen := GeneratorFunc(func(_ context.Context, _ string) (string, error) { return "ok", nil })
	e, err := NewEngine(EngineConfig{Generator: gen, WorkDir: t.TempDir()})
	require.NoError(t, err)
	defer e.Shutdown()

	h := NewRouter(e, "")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
