package action

// Canonical operation names recognized by the dispatcher. The normalizer maps
// the model's synonym drift onto this fixed vocabulary.
const (
	OpReadFile           = "read_file"
	OpCreateFile         = "create_file"
	OpUpdateFile         = "update_file"
	OpDeleteFile         = "delete_file"
	OpCreateFolder       = "create_folder"
	OpDeleteFolder       = "delete_folder"
	OpListDirectory      = "list_directory"
	OpChangeDirectory    = "change_directory"
	OpRunCommand         = "run_command"
	OpSendInputToProcess = "send_input_to_process"
	OpKillProcess        = "kill_process"
)

// CanonicalOps lists every operation the core recognizes, in the order used
// for prompts and error listings.
var CanonicalOps = []string{
	OpReadFile,
	OpCreateFile,
	OpUpdateFile,
	OpDeleteFile,
	OpCreateFolder,
	OpDeleteFolder,
	OpListDirectory,
	OpChangeDirectory,
	OpRunCommand,
	OpSendInputToProcess,
	OpKillProcess,
}

// Action is one requested operation pulled out of generator output.
// Name may be a synonym until Normalize has run; Args keys likewise.
// CID is the caller-supplied correlation tag, carried either at the top
// level of the JSON object or inside args.
type Action struct {
	Name string         `json:"action"`
	Args map[string]any `json:"args"`
	CID  string         `json:"cid,omitempty"`
}

// IsCanonical reports whether name is one of the fixed operation names.
func IsCanonical(name string) bool {
	_, ok := paramAliases[name]
	return ok
}

// StringArg fetches args[key] as a string, tolerating missing or
// non-string values.
func (a Action) StringArg(key string) string {
	if a.Args == nil {
		return ""
	}
	if s, ok := a.Args[key].(string); ok {
		return s
	}
	return ""
}
