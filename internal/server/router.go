// Package server exposes the supervisor's process table over HTTP for
// observation and control while the agent runs.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/metrics"
	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/supervisor"
)

// Router provides embeddable HTTP handlers over a supervisor.
// Endpoints:
//
//	GET  {basePath}/processes     list all tracked processes
//	GET  {basePath}/status        query: id=<pid or cid>
//	POST {basePath}/input         body: {"id": "...", "data": "..."}
//	POST {basePath}/kill          query: id=<pid or cid>
//	GET  {basePath}/metrics       Prometheus exposition
//	GET  {basePath}/healthz
type Router struct {
	sup      *supervisor.Supervisor
	basePath string
}

// NewRouter constructs a Router with a configurable basePath, e.g.
// "/api" results in /api/processes, /api/status, ...
func NewRouter(sup *supervisor.Supervisor, basePath string) *Router {
	return &Router{sup: sup, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in
// any server or mux.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/processes", r.handleProcesses)
	group.GET("/status", r.handleStatus)
	group.POST("/input", r.handleInput)
	group.POST("/kill", r.handleKill)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	group.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, okResp{OK: true}) })
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, sup *supervisor.Supervisor) *http.Server {
	r := NewRouter(sup, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK  bool `json:"ok"`
	PID int  `json:"pid,omitempty"`
}

func (r *Router) handleProcesses(c *gin.Context) {
	c.JSON(http.StatusOK, r.sup.RefreshAll())
}

func (r *Router) handleStatus(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResp{Error: "id query param required"})
		return
	}
	pid, err := r.sup.Find(id)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResp{Error: err.Error()})
		return
	}
	st, ok := r.sup.Status(pid)
	if !ok {
		c.JSON(http.StatusNotFound, errorResp{Error: "process disappeared"})
		return
	}
	c.JSON(http.StatusOK, st)
}

type inputReq struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

func (r *Router) handleInput(c *gin.Context) {
	var req inputReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	pid, err := r.sup.SendInput(req.ID, req.Data)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, supervisor.ErrNotFound) || errors.Is(err, supervisor.ErrNoProcesses) {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true, PID: pid})
}

func (r *Router) handleKill(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResp{Error: "id query param required"})
		return
	}
	pid, _, err := r.sup.Kill(id)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true, PID: pid})
}

func sanitizeBase(bp string) string {
	if bp == "" || bp == "/" {
		return ""
	}
	if bp[0] != '/' {
		bp = "/" + bp
	}
	for len(bp) > 1 && bp[len(bp)-1] == '/' {
		bp = bp[:len(bp)-1]
	}
	return bp
}
