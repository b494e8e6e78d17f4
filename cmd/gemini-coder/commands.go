package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	cliagent "github.com/ShauryaManiTripathi/Gemini-Coder-CLI"
)

func loadConfig(cmd *cobra.Command) (cliagent.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return cliagent.LoadConfig(path)
}

func buildEngine(cfg cliagent.Config, gen cliagent.Generator, autoConfirm bool) (*cliagent.Engine, error) {
	slog.SetDefault(cfg.Log.NewSlogger())
	if err := cliagent.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}
	var confirm cliagent.Confirmer
	if !autoConfirm {
		confirm = terminalConfirmer{}
	}
	return cliagent.NewEngine(cliagent.EngineConfig{
		Generator:  gen,
		WorkDir:    cfg.WorkDir,
		HistoryDSN: cfg.HistoryDSN,
		Env:        cfg.Env,
		ProcessLog: cfg.ProcLog.MirrorConfig(),
		Confirm:    confirm,
		MaxRetries: cfg.Generator.MaxRetries,
	})
}

// terminalConfirmer prompts on the controlling terminal before a
// destructive action runs.
type terminalConfirmer struct{}

func (terminalConfirmer) Confirm(name string, args map[string]any) bool {
	fmt.Printf("Gemini wants to: %s with args %v. Execute? (y/N): ", name, args)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func newRunCmd() *cobra.Command {
	var generatorCmd string
	var autoConfirm bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive agent loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if autoConfirm {
				cfg.AutoConfirm = true
			}
			gen, err := newCommandGenerator(generatorCmd)
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg, gen, cfg.AutoConfirm)
			if err != nil {
				return err
			}
			defer engine.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Listen != "" {
				srv := cliagent.NewHTTPServer(cfg.Listen, "", engine)
				defer func() { _ = srv.Close() }()
				slog.Info("process API listening", "addr", cfg.Listen)
			}

			return runREPL(ctx, engine)
		},
	}
	cmd.Flags().StringVar(&generatorCmd, "generator-cmd", "", "external command that reads a prompt on stdin and writes the model response to stdout")
	cmd.Flags().BoolVarP(&autoConfirm, "yes", "y", false, "skip confirmation prompts for destructive actions")
	return cmd
}

func runREPL(ctx context.Context, engine *cliagent.Engine) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fmt.Println("gemini-coder ready. /quit to exit.")
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nShutting down, terminating tracked processes.")
			return nil
		default:
		}
		fmt.Printf("\n[%s]> ", engine.Cwd())
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			return nil
		}
		turn, err := engine.RunTurn(ctx, input)
		if err != nil {
			slog.Error("turn failed", "error", err)
			continue
		}
		fmt.Println("\nGemini:")
		fmt.Println(turn.Response)
		if turn.Actions > 0 {
			fmt.Println("\nResult:")
			fmt.Println(turn.Result)
		}
	}
}

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the process table and metrics over HTTP without the REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			engine, err := buildEngine(cfg, nil, true)
			if err != nil {
				return err
			}
			defer engine.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := cliagent.NewHTTPServer(cfg.Listen, "", engine)
			slog.Info("serving process API", "addr", cfg.Listen)
			<-ctx.Done()
			return srv.Close()
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("gemini-coder", version)
		},
	}
}
