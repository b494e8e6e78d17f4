package cliagent

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/action"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/agent"
	cfg "github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/config"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/dispatch"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/env"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/history"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/history/factory"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/logger"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/metrics"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/ops"
	iapi "github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/server"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/session"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Action = action.Action

type Status = supervisor.Status

type Turn = agent.Turn

type Generator = agent.Generator

type GeneratorFunc = agent.GeneratorFunc

type Confirmer = dispatch.Confirmer

type ConfirmFunc = dispatch.ConfirmFunc

type HistorySink = history.Sink

type Config = cfg.Config

// ExtractActions parses generator output into normalized actions. Useful
// for embedding the extraction pipeline without the full agent.
func ExtractActions(text string) []Action {
	return action.NormalizeAll(action.Extract(text))
}

// Engine is a thin facade bundling the session, supervisor, dispatcher
// and agent loop behind a stable public API for embedding.
type Engine struct {
	agent *agent.Agent
	sup   *supervisor.Supervisor
	sess  *session.Session
}

// EngineConfig configures NewEngine. Generator is required; everything
// else has working defaults.
type EngineConfig struct {
	Generator  Generator
	WorkDir    string
	HistoryDSN string
	Env        []string
	ProcessLog logger.Config
	Confirm    Confirmer
	MaxRetries int
}

func NewEngine(ec EngineConfig) (*Engine, error) {
	sess, err := session.New(ec.WorkDir)
	if err != nil {
		return nil, err
	}
	var sink history.Sink
	if ec.HistoryDSN != "" {
		sink, err = factory.NewSinkFromDSN(ec.HistoryDSN)
		if err != nil {
			return nil, err
		}
	}
	environ := env.New()
	environ.SetAll(ec.Env)
	sup := supervisor.New(supervisor.Config{
		Env:     environ,
		Log:     ec.ProcessLog,
		History: sink,
	})
	exec := ops.NewExecutor(sess, sup)
	disp := dispatch.New(exec.Handlers(), ec.Confirm)
	a := agent.New(agent.Config{
		Generator:  ec.Generator,
		Session:    sess,
		Supervisor: sup,
		Dispatcher: disp,
		History:    sink,
		MaxRetries: ec.MaxRetries,
	})
	return &Engine{agent: a, sup: sup, sess: sess}, nil
}

// RunTurn executes one conversation turn.
func (e *Engine) RunTurn(ctx context.Context, userInput string) (Turn, error) {
	return e.agent.RunTurn(ctx, userInput)
}

// Processes snapshots every tracked process.
func (e *Engine) Processes() []Status { return e.sup.RefreshAll() }

// Cwd returns the session's current working directory.
func (e *Engine) Cwd() string { return e.sess.Cwd() }

// Supervisor exposes the process supervisor for HTTP embedding.
func (e *Engine) Supervisor() *supervisor.Supervisor { return e.sup }

// Shutdown terminates every tracked process.
func (e *Engine) Shutdown() { e.agent.Shutdown() }

// LoadConfig reads the TOML configuration file.
func LoadConfig(path string) (Config, error) { return cfg.Load(path) }

// NewHTTPServer starts an HTTP server exposing the engine's process API.
func NewHTTPServer(addr, basePath string, e *Engine) *http.Server {
	return iapi.NewServer(addr, basePath, e.sup)
}

// NewRouter returns an http.Handler over the engine's process API for
// mounting into an existing server or mux.
func NewRouter(e *Engine, basePath string) http.Handler {
	return iapi.NewRouter(e.sup, basePath).Handler()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
