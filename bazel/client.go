/*
	Shells out to the bazel CLI.

	Every invocation runs with the workspace as its cwd and the configured
	startup flags (normally just "--batch") ahead of the command.
	Exit codes are never turned into panics here: callers get them back
	as `ErrToolFailed` errors (or, for builds, as a plain number) and decide
	for themselves whether a failure matters.
	A bazel binary that can't be launched at all comes back as `ErrToolMissing`.
*/
package bazel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/polydawn/gosh"
	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/toolchain-discovery/api"
)

type Client struct {
	bazel gosh.Command
	path  string
}

/*
	Template out a client for the workspace at `workspaceDir`.

	`bazelPath` may be a bare name, in which case it's resolved from $PATH
	at exec time.
*/
func NewClient(bazelPath string, startupFlags []string, workspaceDir string) *Client {
	return &Client{
		bazel: gosh.Gosh(
			bazelPath,
			startupFlags,
			gosh.NullIO,
			gosh.Opts{
				Cwd:    workspaceDir,
				OkExit: gosh.AnyExit,
			},
		),
		path: bazelPath,
	}
}

/*
	Outcome of a build.  Builds are expected to fail often (missing sources,
	unconfigured toolchains) and we still want the stderr, so the exit code
	is just data here.
*/
type BuildResult struct {
	ExitCode int
	Stderr   string
}

// Flags which make a build print toolchain selection and refetch every repository.
func BuildFlags(platform string, logPath string) []string {
	return []string{
		"--platforms=" + platform,
		"--experimental_workspace_rules_log_file=" + logPath,
		"--repository_cache=", // force fresh repository downloads.
		"--toolchain_resolution_debug=.*",
	}
}

func (c *Client) Build(platform string, logPath string, targets []string) (BuildResult, error) {
	var errBuf bytes.Buffer
	code, err := c.run(gosh.Opts{Err: &errBuf}, "build", BuildFlags(platform, logPath), targets)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{ExitCode: code, Stderr: errBuf.String()}, nil
}

// Run a query and return its stdout.
// A non-zero exit is an `ErrToolFailed` carrying the first line of stderr.
func (c *Client) Query(expr string, output string) (string, error) {
	var outBuf, errBuf bytes.Buffer
	code, err := c.run(gosh.Opts{Out: &outBuf, Err: &errBuf}, "query", expr, "--output="+output)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", Errorf(api.ErrToolFailed, "bazel query %q exited %d: %s", expr, code, firstLine(errBuf.String()))
	}
	return outBuf.String(), nil
}

// Labels of every target matching `expr`, one per non-blank line of output.
func (c *Client) QueryLabels(expr string) ([]string, error) {
	out, err := c.Query(expr, "label")
	if err != nil {
		return nil, err
	}
	var labels []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			labels = append(labels, line)
		}
	}
	return labels, nil
}

// Rule definitions of everything in the external repository, in BUILD syntax.
func (c *Client) QueryRepository(repoName string) (string, error) {
	return c.Query("@"+repoName+"//...", "build")
}

func (c *Client) CleanExpunge() error {
	var errBuf bytes.Buffer
	code, err := c.run(gosh.Opts{Err: &errBuf}, "clean", "--expunge")
	if err != nil {
		return Recategorize(api.ErrClean, err)
	}
	if code != 0 {
		return Errorf(api.ErrClean, "bazel clean --expunge exited %d: %s", code, firstLine(errBuf.String()))
	}
	return nil
}

/*
	Launch and wait.  Gosh reports launch problems by panicking;
	those are caught here and turned into errors.
*/
func (c *Client) run(args ...interface{}) (exitCode int, err error) {
	defer func() {
		rcvr := recover()
		if rcvr == nil {
			return
		}
		switch e := rcvr.(type) {
		case gosh.NoSuchCommandError:
			err = Errorf(api.ErrToolMissing, "bazel binary %q not found: %s", c.path, e.Cause)
		case gosh.NoSuchCwdError:
			err = Errorf(api.ErrWorkspaceIO, "workspace %q is not a directory: %s", e.Path, e.Cause)
		case error:
			err = Errorf(api.ErrToolMissing, "could not run bazel %q: %s", c.path, e)
		default:
			err = Errorf(api.ErrToolMissing, "could not run bazel %q: %v", c.path, e)
		}
	}()
	return c.bazel.Bake(args...).Run().GetExitCode(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "(no output)"
	}
	return fmt.Sprintf("%q", s)
}
