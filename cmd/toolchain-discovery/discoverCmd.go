package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/toolchain-discovery/api"
	"go.polydawn.net/toolchain-discovery/config"
	"go.polydawn.net/toolchain-discovery/discovery"
)

func DiscoverCmd(
	ctx context.Context,
	args discoverArgs,
	stdout, stderr io.Writer,
) (err error) {
	defer RequireErrorHasCategory(&err, api.ErrorCategory(""))

	log, err := setupLogger(args.LogLevel, stderr)
	if err != nil {
		return err
	}

	workspaceDir, err := filepath.Abs(args.Workspace)
	if err != nil {
		return Errorf(api.ErrUsage, "cannot resolve workspace path %q: %s", args.Workspace, err)
	}
	if fi, err := os.Stat(workspaceDir); err != nil || !fi.IsDir() {
		return Errorf(api.ErrUsage, "workspace %q is not a directory", args.Workspace)
	}

	cfg, err := config.Load(workspaceDir, args.ConfigPath)
	if err != nil {
		return err
	}
	if args.Bazel != "" {
		cfg.Bazel = args.Bazel
	}
	if args.Extractor != "" {
		cfg.Extractor = args.Extractor
	}
	log.Debug("configured", "workspace", workspaceDir, "bazel", cfg.Bazel, "extractor", cfg.Extractor, "clean", args.Clean)

	profiler := discovery.NewProfiler(workspaceDir, cfg, args.Clean, log, stdout)
	_, err = profiler.Run(ctx)
	return err
}

// Human-readable logs to stderr, filtered at `level`.
func setupLogger(level string, stderr io.Writer) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return nil, Errorf(api.ErrUsage, "unknown log level %q", level)
	}
	log := log15.New()
	log.SetHandler(log15.LvlFilterHandler(lvl,
		log15.StreamHandler(stderr, log15.TerminalFormat()),
	))
	return log, nil
}
