package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	cliagent "github.com/ShauryaManiTripathi/Gemini-Coder-CLI"
)

// newCommandGenerator bridges the agent to an external generator
// process: the prompt is written to its stdin and its stdout is taken as
// the model response. This keeps API clients and credentials outside the
// agent binary.
func newCommandGenerator(command string) (cliagent.Generator, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, errors.New("--generator-cmd is required; point it at a script that queries your model")
	}
	return cliagent.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		// #nosec G204
		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
		cmd.Stdin = strings.NewReader(prompt)
		var out, stderr bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				return "", fmt.Errorf("generator command: %w: %s", err, msg)
			}
			return "", fmt.Errorf("generator command: %w", err)
		}
		return out.String(), nil
	}), nil
}
