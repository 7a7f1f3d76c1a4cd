package scan

import (
	"strings"
)

// Substring bazel prints (with --toolchain_resolution_debug) once it has
// picked a toolchain implementation.
const SelectedToolchainMarker = "Selected toolchain"

/*
	Scan build stderr for toolchain selections and return the names of the
	external repositories they came from, in the order seen.

	From each line containing the marker we take the first whitespace
	separated token that starts with '@' and contains "//", and keep only
	its repository part: "@my_repo//:toolchain" yields "my_repo".
	Lines without such a token are skipped.

	Nothing is deduplicated: a repository selected on three lines is
	returned three times.
*/
func RepositoryRefs(stderr string) []string {
	var refs []string
	for _, line := range strings.Split(stderr, "\n") {
		if !strings.Contains(line, SelectedToolchainMarker) {
			continue
		}
		for _, tok := range strings.Fields(line) {
			if !strings.HasPrefix(tok, "@") || !strings.Contains(tok, "//") {
				continue
			}
			refs = append(refs, repositoryName(tok))
			break
		}
	}
	return refs
}

// Everything before the first "//", minus the leading sigils.
// Canonical names ("@@repo~ext//...") lose both.
func repositoryName(tok string) string {
	return strings.TrimLeft(tok[:strings.Index(tok, "//")], "@")
}
