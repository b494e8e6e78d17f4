package action

// Alias tables are declarative data rather than branching code so they can be
// extended and unit tested in one place.

// opAliases maps operation-name synonyms the generator is known to emit onto
// the canonical vocabulary.
var opAliases = map[string]string{
	"create_directory": OpCreateFolder,
	"mkdir":            OpCreateFolder,
	"make_directory":   OpCreateFolder,
	"make_folder":      OpCreateFolder,
	"make_dir":         OpCreateFolder,
	"create_dir":       OpCreateFolder,

	"delete_directory": OpDeleteFolder,
	"rmdir":            OpDeleteFolder,
	"remove_directory": OpDeleteFolder,
	"remove_folder":    OpDeleteFolder,
	"rm_dir":           OpDeleteFolder,
	"rm_folder":        OpDeleteFolder,

	"write_file": OpCreateFile,
	"make_file":  OpCreateFile,

	"remove_file": OpDeleteFile,
	"rm_file":     OpDeleteFile,
	"rm":          OpDeleteFile,

	"cd":    OpChangeDirectory,
	"chdir": OpChangeDirectory,

	"ls":       OpListDirectory,
	"dir":      OpListDirectory,
	"list_dir": OpListDirectory,

	"execute": OpRunCommand,
	"exec":    OpRunCommand,
	"run":     OpRunCommand,
	"shell":   OpRunCommand,

	"cat":       OpReadFile,
	"view_file": OpReadFile,
	"open_file": OpReadFile,

	"modify_file": OpUpdateFile,
	"edit_file":   OpUpdateFile,

	"input_to_process": OpSendInputToProcess,
	"process_input":    OpSendInputToProcess,
	"send_to_process":  OpSendInputToProcess,

	"terminate_process": OpKillProcess,
	"stop_process":      OpKillProcess,
	"end_process":       OpKillProcess,
}

// paramAliases lists, per canonical operation, the accepted synonym keys for
// each canonical parameter. The first synonym present in args wins; the
// canonical name itself is always accepted.
var paramAliases = map[string]map[string][]string{
	OpCreateFolder: {
		"path": {"path", "dir_path", "directory_path", "folder_path", "dirname", "dir", "folder", "directory"},
	},
	OpCreateFile: {
		"path":    {"path", "file_path", "filepath", "filename", "file", "destination", "dest"},
		"content": {"content", "file_content", "text", "data", "source", "code", "body", "contents"},
	},
	OpReadFile: {
		"path": {"path", "file_path", "filepath", "filename", "file", "source", "src"},
	},
	OpUpdateFile: {
		"path":        {"path", "file_path", "filepath", "filename", "file", "target"},
		"content":     {"content", "file_content", "text", "data", "new_content", "code", "body", "contents"},
		"mode":        {"mode", "update_mode", "edit_mode", "method", "operation"},
		"line_number": {"line_number", "line", "line_num", "at_line", "lineno"},
		"start_line":  {"start_line", "start", "from_line", "begin_line", "first_line"},
		"end_line":    {"end_line", "end", "to_line", "last_line"},
	},
	OpDeleteFile: {
		"path": {"path", "file_path", "filepath", "filename", "file", "target"},
	},
	OpDeleteFolder: {
		"path": {"path", "dir_path", "directory_path", "folder_path", "dirname", "dir", "folder", "directory", "target"},
	},
	OpListDirectory: {
		"path": {"path", "dir_path", "directory_path", "folder_path", "dirname", "dir", "folder", "directory"},
	},
	OpChangeDirectory: {
		"path": {"path", "dir_path", "directory_path", "folder_path", "dirname", "dir", "folder", "directory", "cd_path", "to", "destination"},
	},
	OpRunCommand: {
		"command_string": {"command_string", "command", "cmd", "shell_command", "exec", "execute", "run"},
		"cid":            {"cid", "command_id", "id", "identifier"},
	},
	OpSendInputToProcess: {
		"pid_or_cid": {"pid_or_cid", "pid", "cid", "process_id", "command_id", "id", "identifier", "process"},
		"input_data": {"input_data", "input", "data", "text", "stdin", "command_input"},
	},
	OpKillProcess: {
		"pid_or_cid": {"pid_or_cid", "pid", "cid", "process_id", "command_id", "id", "identifier", "process"},
	},
}

// wrapperKeys are object keys whose array value is unwrapped when the
// generator nests its action list inside a single wrapper object.
var wrapperKeys = []string{"actions", "action_items", "commands"}
