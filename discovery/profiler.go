/*
	Discovers which toolchain archives a bazel workspace pulls in, per platform.

	A run goes: find platforms to analyze (declaring temporary ones in the
	workspace if it has none), then for each platform build everything with
	toolchain resolution debugging on, pick the selected toolchain
	repositories out of the build's stderr, and query each one for its
	archive url and checksum.  Whatever turned up is written as a manifest
	in the workspace root.

	Most bazel failures along the way only cost coverage: a failed build
	still has stderr worth reading, and a repository that won't answer a
	query is skipped.  Only a failed clean, a missing bazel binary, and
	filesystem trouble end a run early.  Any change made to the workspace
	is undone before Run returns, on every path.
*/
package discovery

import (
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/inconshreveable/log15"
	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/toolchain-discovery/api"
	"go.polydawn.net/toolchain-discovery/bazel"
	"go.polydawn.net/toolchain-discovery/config"
	"go.polydawn.net/toolchain-discovery/manifest"
	"go.polydawn.net/toolchain-discovery/scan"
	"go.polydawn.net/toolchain-discovery/workspace"
)

// Query listing every platform declared in the main repository.
const PlatformQuery = "kind(platform, //...)"

// The slice of bazel a Profiler needs.  Satisfied by *bazel.Client.
type Bazel interface {
	QueryLabels(expr string) ([]string, error)
	Build(platform string, logPath string, targets []string) (bazel.BuildResult, error)
	QueryRepository(repoName string) (string, error)
	CleanExpunge() error
}

var _ Bazel = &bazel.Client{}

type Profiler struct {
	Workspace string                // Root of the bazel workspace under analysis.
	Config    config.Config         // Manifest name, targets, platform filtering.
	Clean     bool                  // Whether to `clean --expunge` before every platform build.
	Bazel     Bazel                 // Runs bazel in Workspace.
	Extractor scan.ArchiveExtractor // Reads url and sha256 out of repository definitions.
	Summary   io.Writer             // Receives the human-readable table at the end.
	Log       log15.Logger
}

func NewProfiler(workspaceDir string, cfg config.Config, clean bool, log log15.Logger, summary io.Writer) *Profiler {
	return &Profiler{
		Workspace: workspaceDir,
		Config:    cfg,
		Clean:     clean,
		Bazel:     bazel.NewClient(cfg.Bazel, cfg.StartupFlags, workspaceDir),
		Extractor: ExtractorFor(cfg.Extractor),
		Summary:   summary,
		Log:       log,
	}
}

// Map a config extractor name to the extractor itself.
// Unknown names get the line extractor; config validation rejects them earlier.
func ExtractorFor(name string) scan.ArchiveExtractor {
	switch name {
	case config.ExtractorSyntax:
		return scan.SyntaxExtractor{}
	default:
		return scan.LineExtractor{}
	}
}

/*
	Run the whole discovery and write the manifest.

	Returns the path of the manifest written.  Cancelling `ctx` stops the
	run before the next platform is started (never during one), with an
	`ErrInterrupted` error.
*/
func (p *Profiler) Run(ctx context.Context) (manifestPath string, err error) {
	platforms, mutation, err := p.resolvePlatforms()
	defer func() {
		if rerr := mutation.Restore(); rerr != nil {
			p.Log.Error("could not restore workspace", "path", mutation.Path, "err", rerr)
			if err == nil {
				err = rerr
			}
		} else if mutation != nil {
			p.Log.Info("restored workspace", "path", mutation.Path)
		}
	}()
	if err != nil {
		return "", err
	}

	artifacts, err := p.harvest(ctx, platforms)
	if err != nil {
		return "", err
	}

	manifestPath = filepath.Join(p.Workspace, p.Config.ManifestName)
	if err := manifest.Write(manifestPath, manifest.Group(artifacts)); err != nil {
		return "", err
	}
	if p.Summary != nil {
		if err := manifest.RenderSummary(p.Summary, artifacts); err != nil {
			p.Log.Warn("could not print summary", "err", err)
		}
	}
	p.Log.Info("manifest written", "path", manifestPath, "artifacts", len(artifacts))
	return manifestPath, nil
}

/*
	Find the platforms to analyze.  If the workspace declares none we can
	use (or the query fails outright), temporary ones are declared in its
	root build file, and the mutation returned must be restored.

	A non-nil mutation may come back alongside an error.
*/
func (p *Profiler) resolvePlatforms() ([]string, *workspace.Mutation, error) {
	p.Log.Info("discovering platforms")
	labels, err := p.Bazel.QueryLabels(PlatformQuery)
	switch {
	case err == nil:
	case Category(err) == api.ErrToolFailed:
		p.Log.Warn("platform query failed", "err", err)
	default:
		return nil, nil, err
	}

	platforms := workspace.FilterPlatforms(labels, p.Config.PlatformTokens, p.Config.MaxPlatforms)
	if len(platforms) > 0 {
		p.Log.Info("found platforms", "platforms", strings.Join(platforms, ","))
		return platforms, nil, nil
	}

	p.Log.Info("no usable platforms declared; adding temporary ones")
	mutation, err := workspace.Synthesize(p.Workspace)
	if err != nil {
		return nil, mutation, err
	}
	p.Log.Debug("declared temporary platforms", "path", mutation.Path, "existed", mutation.Existed())
	return workspace.ActivePlatforms(), mutation, nil
}

/*
	Analyze each platform in turn, accumulating every artifact found.

	All builds share one workspace rules log file, which is removed
	before returning.
*/
func (p *Profiler) harvest(ctx context.Context, platforms []string) ([]api.Artifact, error) {
	logFile, err := ioutil.TempFile("", "toolchain-discovery-*.bin")
	if err != nil {
		return nil, Errorf(api.ErrWorkspaceIO, "cannot create workspace rules log: %s", err)
	}
	logPath := logFile.Name()
	logFile.Close()
	defer os.Remove(logPath)

	var artifacts []api.Artifact
	for _, platform := range platforms {
		select {
		case <-ctx.Done():
			return nil, Errorf(api.ErrInterrupted, "interrupted before analyzing %s: %s", platform, ctx.Err())
		default:
		}
		found, err := p.analyzePlatform(platform, logPath)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, found...)
	}
	p.inspectRulesLog(logPath)
	return artifacts, nil
}

func (p *Profiler) analyzePlatform(platform string, logPath string) ([]api.Artifact, error) {
	log := p.Log.New("platform", platform)
	if p.Clean {
		log.Info("expunging bazel output base")
		if err := p.Bazel.CleanExpunge(); err != nil {
			return nil, err
		}
	}

	log.Info("analyzing platform")
	result, err := p.Bazel.Build(platform, logPath, p.Config.BuildTargets)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		// Expected often enough; the toolchain selection happens before most failures.
		log.Debug("build exited non-zero", "exit", result.ExitCode)
	}

	var found []api.Artifact
	for _, repo := range scan.RepositoryRefs(result.Stderr) {
		log.Info("found toolchain repository", "repo", repo)
		artifact, ok, err := p.fetch(log, platform, repo)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, artifact)
		}
	}
	return found, nil
}

// Query one repository and turn its definition into an artifact, if it's an archive.
func (p *Profiler) fetch(log log15.Logger, platform string, repo string) (api.Artifact, bool, error) {
	definition, err := p.Bazel.QueryRepository(repo)
	switch {
	case err == nil:
	case Category(err) == api.ErrToolFailed:
		log.Warn("could not query repository", "repo", repo, "err", err)
		return api.Artifact{}, false, nil
	default:
		return api.Artifact{}, false, err
	}
	if !strings.Contains(definition, scan.HTTPArchiveMarker) {
		log.Debug("repository is not an archive", "repo", repo)
		return api.Artifact{}, false, nil
	}

	fields, err := p.Extractor.Extract(definition)
	if err != nil {
		log.Debug("unreadable repository definition", "repo", repo, "err", err)
		return api.Artifact{}, false, nil
	}
	artifact := api.Artifact{
		URL:            fields.URL,
		SHA256:         fields.SHA256,
		Platform:       platform,
		ToolchainType:  api.ToolchainTypeUnknown,
		RepositoryName: repo,
		StripPrefix:    fields.StripPrefix,
	}
	if !artifact.Valid() {
		return api.Artifact{}, false, nil
	}
	log.Info("found toolchain archive", "repo", repo, "url", artifact.URL)
	return artifact, true, nil
}

/*
	Look at the workspace rules log the builds left behind.

	The log is a stream of length-delimited protobuf records describing
	every repository rule bazel ran; nothing decodes it yet, so this only
	reports how much was written.
*/
func (p *Profiler) inspectRulesLog(logPath string) {
	info, err := os.Stat(logPath)
	if err != nil {
		p.Log.Debug("no workspace rules log", "path", logPath, "err", err)
		return
	}
	p.Log.Debug("workspace rules log", "path", logPath, "bytes", info.Size())
}
