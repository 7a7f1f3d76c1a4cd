package workspace

import (
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/toolchain-discovery/api"
)

// Build file names we'll append to, in order of preference.
// If neither exists, the first is created.
var BuildFileNames = []string{"BUILD.bazel", "BUILD"}

/*
	Records a change we made to a file in the target workspace, with
	enough information to undo it exactly: either the file's original
	bytes and mode, or the fact that it didn't exist.

	Restore puts things back.  It's safe to call more than once,
	and safe to call on a nil Mutation.
*/
type Mutation struct {
	Path     string
	existed  bool
	original []byte
	mode     os.FileMode
	restored bool
}

// Pick the build file in the root of `workspaceDir` that synthesis would write to.
func ChooseBuildFile(workspaceDir string) string {
	for _, name := range BuildFileNames {
		pth := filepath.Join(workspaceDir, name)
		if _, err := os.Stat(pth); err == nil {
			return pth
		}
	}
	return filepath.Join(workspaceDir, BuildFileNames[0])
}

/*
	Append `block` to the build file at `pth` (creating it if needed),
	remembering what was there first.

	The original is captured before anything is written, so the returned
	Mutation can undo even a failed or partial write; it's returned
	non-nil whenever writing was attempted, error or no.
	A nil Mutation and an error means nothing was touched.
*/
func Append(pth string, block []byte) (*Mutation, error) {
	m := &Mutation{Path: pth}
	info, err := os.Stat(pth)
	switch {
	case err == nil:
		m.existed = true
		m.mode = info.Mode().Perm()
		m.original, err = ioutil.ReadFile(pth)
		if err != nil {
			return nil, Errorf(api.ErrWorkspaceIO, "cannot read %q: %s", pth, err)
		}
	case os.IsNotExist(err):
		m.mode = 0644
	default:
		return nil, Errorf(api.ErrWorkspaceIO, "cannot stat %q: %s", pth, err)
	}

	var content []byte
	if len(m.original) > 0 {
		content = make([]byte, 0, len(m.original)+1+len(block))
		content = append(content, m.original...)
		content = append(content, '\n')
	}
	content = append(content, block...)

	if err := ioutil.WriteFile(pth, content, m.mode); err != nil {
		return m, Errorf(api.ErrWorkspaceIO, "cannot write %q: %s", pth, err)
	}
	return m, nil
}

/*
	Synthesize platform declarations in `workspaceDir`: render the
	SyntheticPlatforms and append them to the preferred build file.
*/
func Synthesize(workspaceDir string) (*Mutation, error) {
	block := append([]byte{'\n'}, RenderPlatformBlock(SyntheticPlatforms)...)
	return Append(ChooseBuildFile(workspaceDir), block)
}

// Whether the mutated file existed before we touched it.
func (m *Mutation) Existed() bool {
	return m.existed
}

/*
	Undo the mutation: write the original bytes back verbatim (and the
	original permissions), or remove the file if we created it.
	A file we created that has since disappeared is fine.
*/
func (m *Mutation) Restore() error {
	if m == nil || m.restored {
		return nil
	}
	if m.existed {
		if err := ioutil.WriteFile(m.Path, m.original, m.mode); err != nil {
			return Errorf(api.ErrWorkspaceIO, "cannot restore %q: %s", m.Path, err)
		}
		if err := os.Chmod(m.Path, m.mode); err != nil {
			return Errorf(api.ErrWorkspaceIO, "cannot restore mode of %q: %s", m.Path, err)
		}
	} else {
		if err := os.Remove(m.Path); err != nil && !os.IsNotExist(err) {
			return Errorf(api.ErrWorkspaceIO, "cannot remove %q: %s", m.Path, err)
		}
	}
	m.restored = true
	return nil
}
