// Package session owns the mutable working-directory state for one agent
// run. Handlers receive the session explicitly instead of reaching for
// process-global state, which keeps them testable in isolation.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Session struct {
	cwd string
}

// New returns a session rooted at dir, falling back to the process working
// directory when dir is empty.
func New(dir string) (*Session, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("working directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory %s is not a directory", abs)
	}
	return &Session{cwd: filepath.Clean(abs)}, nil
}

// Cwd returns the current working directory.
func (s *Session) Cwd() string { return s.cwd }

// Resolve turns a possibly relative, possibly ~-prefixed path into an
// absolute cleaned path anchored at the session's working directory.
func (s *Session) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return s.cwd
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(s.cwd, path))
}

// Chdir moves the session to path after verifying it exists and is
// readable. The target is resolved against the current directory first.
func (s *Session) Chdir(path string) (string, error) {
	target := s.Resolve(path)
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("directory %s: %w", target, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", target)
	}
	if _, err := os.ReadDir(target); err != nil {
		return "", fmt.Errorf("cannot access directory %s: %w", target, err)
	}
	s.cwd = target
	return target, nil
}
