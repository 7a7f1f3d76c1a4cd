package api

import (
	"github.com/warpfork/go-errcat"
)

type ErrorCategory string

const (
	// Indicates some piece of user input to a command was invalid and unrunnable.
	ErrUsage       = ErrorCategory("toolchain-discovery-usage-error")
	// Indicates a config file could not be read or parsed.
	ErrConfig      = ErrorCategory("toolchain-discovery-config-error")
	// Indicates the bazel binary could not be launched at all.
	ErrToolMissing = ErrorCategory("toolchain-discovery-tool-missing")
	// Indicates bazel ran but exited non-zero.  Usually recovered from.
	ErrToolFailed  = ErrorCategory("toolchain-discovery-tool-failed")
	// Indicates `clean --expunge` failed; always fatal.
	ErrClean       = ErrorCategory("toolchain-discovery-clean-failed")
	// Indicates reading, writing, or restoring a file in the target workspace failed.
	ErrWorkspaceIO = ErrorCategory("toolchain-discovery-workspace-io")
	// Indicates the manifest file could not be written.
	ErrManifestIO  = ErrorCategory("toolchain-discovery-manifest-io")
	// Indicates the run was cancelled between platforms.
	ErrInterrupted = ErrorCategory("toolchain-discovery-interrupted")
)

const (
	EXIT_SUCCESS      = 0
	EXIT_BADARGS      = 1
	EXIT_CONFIG       = 2
	EXIT_TOOL_MISSING = 3
	EXIT_WORKSPACE_IO = 4
	EXIT_MANIFEST_IO  = 5
	EXIT_UNKNOWN      = 9  // grab bag for anything uncategorized.
	EXIT_CLEAN        = 10 // `clean --expunge` exited non-zero.
	EXIT_INTERRUPTED  = 130
)

// ExitCodeForError maps an error's category onto a process exit code.
func ExitCodeForError(err error) int {
	switch errcat.Category(err) {
	case nil:
		return EXIT_SUCCESS
	case ErrUsage:
		return EXIT_BADARGS
	case ErrConfig:
		return EXIT_CONFIG
	case ErrToolMissing:
		return EXIT_TOOL_MISSING
	case ErrWorkspaceIO:
		return EXIT_WORKSPACE_IO
	case ErrManifestIO:
		return EXIT_MANIFEST_IO
	case ErrClean:
		return EXIT_CLEAN
	case ErrInterrupted:
		return EXIT_INTERRUPTED
	default:
		return EXIT_UNKNOWN
	}
}
