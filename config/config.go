package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/toolchain-discovery/api"
)

// Name of the config file we look for in the root of the target workspace
// when no explicit path is given.
const WorkspaceConfigName = ".toolchain-discovery.toml"

// Environment variable naming the bazel binary to drive.
// Trumps the config file; loses to the command line.
const EnvBazelPath = "TOOLCHAIN_DISCOVERY_BAZEL"

const (
	ExtractorLines  = "lines"
	ExtractorSyntax = "syntax"
)

type Config struct {
	Bazel          string   `toml:"bazel"`           // Path or name of the bazel binary.
	StartupFlags   []string `toml:"startup_flags"`   // Flags placed before the bazel command, e.g. "--batch".
	BuildTargets   []string `toml:"build_targets"`   // Target patterns to build; building everything triggers every toolchain.
	PlatformTokens []string `toml:"platform_tokens"` // A discovered platform label must contain one of these to be analyzed.
	MaxPlatforms   int      `toml:"max_platforms"`   // Cap on discovered platforms.
	ManifestName   string   `toml:"manifest_name"`   // File name of the manifest, relative to the workspace root.
	Extractor      string   `toml:"extractor"`       // One of ExtractorLines or ExtractorSyntax.
}

func Defaults() Config {
	return Config{
		Bazel:          "bazel",
		StartupFlags:   []string{"--batch"},
		BuildTargets:   []string{"//..."},
		PlatformTokens: []string{"linux", "darwin", "windows", "amd64", "arm64", "x86_64"},
		MaxPlatforms:   4,
		ManifestName:   "toolchain_manifest.json",
		Extractor:      ExtractorLines,
	}
}

/*
	Assemble the config for a run against the workspace at `workspaceDir`.

	Layers, lowest priority first: built-in defaults; the TOML file at
	`explicitPath` (or `<workspaceDir>/.toolchain-discovery.toml` if that
	exists and no explicit path was given); the environment.
	Anything the file leaves unset keeps its default.

	An explicit path that doesn't exist is an error; a missing workspace
	config file is not.
*/
func Load(workspaceDir string, explicitPath string) (Config, error) {
	cfg := Defaults()

	pth := explicitPath
	if pth == "" {
		candidate := filepath.Join(workspaceDir, WorkspaceConfigName)
		if _, err := os.Stat(candidate); err == nil {
			pth = candidate
		}
	}
	if pth != "" {
		if _, err := toml.DecodeFile(pth, &cfg); err != nil {
			return Config{}, Errorf(api.ErrConfig, "error reading config file %q: %s", pth, err)
		}
	}

	if bazel := os.Getenv(EnvBazelPath); bazel != "" {
		cfg.Bazel = bazel
	}

	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Bazel == "":
		return Errorf(api.ErrConfig, "config must name a bazel binary")
	case len(cfg.BuildTargets) == 0:
		return Errorf(api.ErrConfig, "config must name at least one build target")
	case cfg.MaxPlatforms < 1:
		return Errorf(api.ErrConfig, "max_platforms must be at least 1, got %d", cfg.MaxPlatforms)
	case cfg.ManifestName == "" || filepath.Base(cfg.ManifestName) != cfg.ManifestName:
		return Errorf(api.ErrConfig, "manifest_name must be a plain file name, got %q", cfg.ManifestName)
	}
	switch cfg.Extractor {
	case ExtractorLines, ExtractorSyntax:
		return nil
	default:
		return Errorf(api.ErrConfig, "unknown extractor %q (want %q or %q)", cfg.Extractor, ExtractorLines, ExtractorSyntax)
	}
}
