package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	treeMaxDepth       = 4
	treeMaxItemsPerDir = 15
)

// Directories that are listed but never traversed: dependency caches, build
// output, VCS metadata. Descending into these drowns the context in noise.
var skipDeepTraverse = map[string]bool{
	"node_modules": true, "bower_components": true, ".npm": true, ".next": true,
	".nuxt": true, "dist": true, "build": true, ".cache": true, ".yarn": true,
	".venv": true, "venv": true, "__pycache__": true, ".pytest_cache": true,
	".tox": true, ".mypy_cache": true, "site-packages": true,
	"target": true, ".gradle": true, ".m2": true, "out": true, "bin": true, "obj": true,
	"vendor": true, ".bundle": true,
	".git": true, ".svn": true, ".hg": true,
	".idea": true, ".vscode": true, ".vs": true,
	"logs": true, "log": true, "tmp": true, "temp": true,
}

// DirectoryTree renders a bounded tree of the session's working directory
// for context assembly: depth-limited, capped per directory, heavy
// directories not descended into.
func (s *Session) DirectoryTree() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Directory tree for: %s\n", s.cwd)
	writeTree(&b, s.cwd, "", 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeTree(b *strings.Builder, dir, indent string, depth int) {
	if depth >= treeMaxDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(b, "%s(unreadable: %v)\n", indent, err)
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
	shown := 0
	for _, e := range entries {
		if shown >= treeMaxItemsPerDir {
			fmt.Fprintf(b, "%s... (%d more)\n", indent, len(entries)-shown)
			return
		}
		shown++
		if e.IsDir() {
			fmt.Fprintf(b, "%s%s/\n", indent, e.Name())
			if !skipDeepTraverse[e.Name()] {
				writeTree(b, filepath.Join(dir, e.Name()), indent+"  ", depth+1)
			}
		} else {
			fmt.Fprintf(b, "%s%s\n", indent, e.Name())
		}
	}
}
