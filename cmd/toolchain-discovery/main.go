package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	. "github.com/warpfork/go-errcat"
	"gopkg.in/alecthomas/kingpin.v2"

	"go.polydawn.net/toolchain-discovery/api"
	"go.polydawn.net/toolchain-discovery/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		cancel()
	}()

	bhv := Main(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	err := bhv.action()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
	}
	os.Exit(api.ExitCodeForError(err))
}

// Holder type which makes it easier for us to inspect
//  the args parser result in test code before running logic.
type behavior struct {
	parsedArgs interface{}
	action     func() error
}

type discoverArgs struct {
	Workspace  string
	Clean      bool
	ConfigPath string
	Bazel      string // overrides config and environment when set.
	Extractor  string // overrides config when set.
	LogLevel   string
}

func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) behavior {
	// CLI boilerplate.
	app := kingpin.New("toolchain-discovery", "Find the toolchain archives a bazel workspace selects per platform, and write them down.")
	app.HelpFlag.Short('h')
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	// Args struct defs and flag declarations.
	argsDiscover := discoverArgs{}
	app.Arg("workspace", "Path to the bazel workspace to analyze.").
		Default(".").
		StringVar(&argsDiscover.Workspace)
	app.Flag("clean", "Run `bazel clean --expunge` before each platform's build.").
		BoolVar(&argsDiscover.Clean)
	app.Flag("config", "Path to a TOML config file (default: "+config.WorkspaceConfigName+" in the workspace, if present).").
		StringVar(&argsDiscover.ConfigPath)
	app.Flag("bazel", "Bazel binary to drive (overrides config and $"+config.EnvBazelPath+").").
		StringVar(&argsDiscover.Bazel)
	app.Flag("extractor", "How to read archive attributes out of repository definitions.").
		EnumVar(&argsDiscover.Extractor,
			config.ExtractorLines, config.ExtractorSyntax)
	app.Flag("log-level", "Least severe log level to print.").
		Default("info").
		EnumVar(&argsDiscover.LogLevel,
			"debug", "info", "warn", "error")

	// Parse!
	if _, err := app.Parse(args[1:]); err != nil {
		return behavior{
			parsedArgs: err,
			action: func() error {
				return Errorf(api.ErrUsage, "error parsing args: %s", err)
			},
		}
	}
	return behavior{&argsDiscover, func() error {
		return DiscoverCmd(ctx, argsDiscover, stdout, stderr)
	}}
}
