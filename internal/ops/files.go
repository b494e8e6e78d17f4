package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Maximum number of characters of file content returned to the model.
const maxReadChars = 2000

func (e *Executor) ReadFile(args map[string]any) string {
	path := e.sess.Resolve(strArg(args, "path"))
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("Error: File not found at '%s'", path)
	}
	if info.IsDir() {
		return fmt.Sprintf("Error: Path '%s' is a directory, not a file.", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading file '%s': %v", strArg(args, "path"), err)
	}
	content := string(data)
	if len(content) > maxReadChars {
		// Back up to a rune boundary so the cut never emits invalid UTF-8.
		cut := maxReadChars
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		return fmt.Sprintf("File content of '%s' (truncated to %d chars):\n%s...", path, maxReadChars, content[:cut])
	}
	return fmt.Sprintf("File content of '%s':\n%s", path, content)
}

func (e *Executor) CreateFile(args map[string]any) string {
	raw := strArg(args, "path")
	if raw == "" {
		return "Error: 'path' argument is required for create_file."
	}
	path := e.sess.Resolve(raw)
	content := strArg(args, "content")
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Sprintf("Error: Path '%s' is an existing directory. Cannot create file with the same name.", path)
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Sprintf("Error creating file '%s': %v", raw, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Sprintf("Error creating file '%s': %v", raw, err)
	}
	verb := "created"
	if existed {
		verb = "modified"
	}
	return fmt.Sprintf("Success: File '%s' %s.", path, verb)
}

func (e *Executor) UpdateFile(args map[string]any) string {
	raw := strArg(args, "path")
	path := e.sess.Resolve(raw)
	content := strArg(args, "content")
	mode := strArg(args, "mode")
	if mode == "" {
		mode = "overwrite"
	}

	info, statErr := os.Stat(path)
	exists := statErr == nil
	if !exists && mode != "overwrite" && mode != "append" {
		return fmt.Sprintf("Error: File not found at '%s' for mode '%s'. Only 'overwrite' or 'append' can create if not exists.", path, mode)
	}
	if exists && info.IsDir() {
		return fmt.Sprintf("Error: Path '%s' is a directory.", path)
	}

	switch mode {
	case "overwrite":
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, err)
		}
		return fmt.Sprintf("Success: File '%s' overwritten.", path)

	case "append":
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304
		if err != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, err)
		}
		_, werr := f.WriteString(content)
		cerr := f.Close()
		if werr != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, werr)
		}
		if cerr != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, cerr)
		}
		return fmt.Sprintf("Success: Content appended to '%s'.", path)

	case "insert_line":
		lineNumber, ok := intArg(args, "line_number")
		if !ok || lineNumber <= 0 {
			return "Error: 'line_number' must be a positive integer for 'insert_line'."
		}
		lines, err := readLines(path)
		if err != nil {
			return fmt.Sprintf("Error: File '%s' does not exist for 'insert_line'.", path)
		}
		if lineNumber > len(lines)+1 {
			return fmt.Sprintf("Error: 'line_number' %d is out of bounds for file with %d lines.", lineNumber, len(lines))
		}
		lines = append(lines[:lineNumber-1], append([]string{content}, lines[lineNumber-1:]...)...)
		if err := writeLines(path, lines); err != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, err)
		}
		return fmt.Sprintf("Success: Content inserted at line %d in '%s'.", lineNumber, path)

	case "delete_line_range":
		startLine, okStart := intArg(args, "start_line")
		endLine, okEnd := intArg(args, "end_line")
		if !okEnd {
			endLine, okEnd = startLine, okStart
		}
		if !okStart || startLine <= 0 || !okEnd || endLine < startLine {
			return "Error: 'start_line' and 'end_line' must be valid positive integers with end_line >= start_line."
		}
		lines, err := readLines(path)
		if err != nil {
			return fmt.Sprintf("Error: File '%s' does not exist for 'delete_line_range'.", path)
		}
		if startLine > len(lines) {
			return fmt.Sprintf("Error: 'start_line' %d is out of bounds for file with %d lines.", startLine, len(lines))
		}
		if endLine > len(lines) {
			endLine = len(lines)
		}
		lines = append(lines[:startLine-1], lines[endLine:]...)
		if err := writeLines(path, lines); err != nil {
			return fmt.Sprintf("Error updating file '%s': %v", raw, err)
		}
		return fmt.Sprintf("Success: Lines %d-%d deleted from '%s'.", startLine, intArgOr(args, "end_line", startLine), path)

	default:
		return fmt.Sprintf("Error: Invalid update mode '%s'. Supported modes are 'overwrite', 'append', 'insert_line', 'delete_line_range'.", mode)
	}
}

func intArgOr(args map[string]any, key string, def int) int {
	if v, ok := intArg(args, key); ok {
		return v
	}
	return def
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return []string{}, nil
	}
	return strings.Split(s, "\n"), nil
}

func writeLines(path string, lines []string) error {
	out := strings.Join(lines, "\n")
	if out != "" {
		out += "\n"
	}
	return os.WriteFile(path, []byte(out), 0o600)
}

func (e *Executor) DeleteFile(args map[string]any) string {
	path := e.sess.Resolve(strArg(args, "path"))
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("Error: File not found at '%s'", path)
	}
	if info.IsDir() {
		return fmt.Sprintf("Error: Path '%s' is a directory. Use delete_folder to delete directories.", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Sprintf("Error deleting file '%s': %v", strArg(args, "path"), err)
	}
	return fmt.Sprintf("Success: File '%s' deleted.", path)
}

func (e *Executor) CreateFolder(args map[string]any) string {
	raw := strArg(args, "path")
	if raw == "" {
		return "Error: 'path' argument is required for create_folder."
	}
	path := e.sess.Resolve(raw)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return fmt.Sprintf("Error: Path '%s' exists and is a file. Cannot create folder with the same name.", path)
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Sprintf("Error creating folder '%s': %v", raw, err)
	}
	return fmt.Sprintf("Success: Folder '%s' created (or already existed).", path)
}

func (e *Executor) DeleteFolder(args map[string]any) string {
	path := e.sess.Resolve(strArg(args, "path"))
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("Error: Folder not found at '%s'", path)
	}
	if !info.IsDir() {
		return fmt.Sprintf("Error: Path '%s' is not a directory.", path)
	}
	if path == e.sess.Cwd() {
		return fmt.Sprintf("Error: Cannot delete the current working directory '%s'.", path)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Sprintf("Error deleting folder '%s': %v", strArg(args, "path"), err)
	}
	return fmt.Sprintf("Success: Folder '%s' and its contents deleted.", path)
}

func (e *Executor) ListDirectory(args map[string]any) string {
	raw := strArg(args, "path")
	if raw == "" {
		raw = "."
	}
	path := e.sess.Resolve(raw)
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Sprintf("Error: Path '%s' is not a directory or does not exist.", path)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("Directory '%s' is empty.", path)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return fmt.Sprintf("Contents of directory '%s':\n%s", path, strings.Join(names, "\n"))
}

func (e *Executor) ChangeDirectory(args map[string]any) string {
	raw := strArg(args, "path")
	if raw == "" {
		return "Error: 'path' argument is required for change_directory."
	}
	resolved := e.sess.Resolve(raw)
	if _, err := e.sess.Chdir(raw); err != nil {
		if os.IsPermission(err) {
			return fmt.Sprintf("Error: Cannot access directory '%s': %v", resolved, err)
		}
		return fmt.Sprintf("Error: Directory '%s' (from input '%s') not found or is not a directory.", resolved, raw)
	}
	return fmt.Sprintf("Success: Current working directory changed to '%s'.", e.sess.Cwd())
}
