package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/wow/internal/cliconfig"
	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/internal/output"
)

const helpBanner = `
 █     █  ████  █     █
 █  █  █ █    █ █  █  █
 █ █ █ █ █    █ █ █ █ █
  █   █   ████   █   █
`

const helpDescription = `
Keeps your desktop wallpaper fresh with images from Bing.

Run without arguments to update the wallpaper if the interval has elapsed,
or start the background daemon with "wow run". Every file wow writes lives
next to the executable; override with --workspace or WOW_WORKSPACE.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  wow                 update now if due
  wow freq 2.5        update every two and a half hours
  wow from 2          use the bing image of the day
  wow run             start the background daemon
  wow stop            stop it again
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	e := &env{cfg: cliconfig.DefaultConfig()}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	e.close()
	if err == nil {
		return 0
	}

	p := output.NewPrinter(stderr)
	p.Error("%s", describe(err))
	if errors.Is(err, domain.ErrInvalidArgument) && cmd != nil {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return exitCode(err)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:               "wow",
		Short:             "Keep your desktop wallpaper fresh",
		Long:              longHelp,
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.update(cmd.Context(), false)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&e.workspace, "workspace", "", "directory holding wow state and images (default: executable directory)")
	f.StringVar(&e.cfg.LogLevel, "log-level", e.cfg.LogLevel, "log level (debug, info, warn, error)")
	f.DurationVar(&e.cfg.PollInterval, "poll", e.cfg.PollInterval, "daemon poll interval")
	f.DurationVar(&e.cfg.HTTPTimeout, "timeout", e.cfg.HTTPTimeout, "HTTP timeout for resolve and download")
	f.IntVar(&e.cfg.MaxImageBytes, "max-image-bytes", e.cfg.MaxImageBytes, "maximum image size in bytes")
	f.StringVar(&e.cfg.UpdaterPath, "updater", "", "apply-helper executable (default: <workspace>/updater)")
	f.IntVar(&e.cfg.HistoryKeep, "history-keep", e.cfg.HistoryKeep, "update attempts kept in wow.db")
	f.StringVar(&e.cfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the daemon runs")
	f.BoolVar(&e.cfg.WatchState, "watch-state", e.cfg.WatchState, "wake the daemon when wow.conf changes")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	})
	root.SetHelpCommand(newHelpCmd(e))
	root.AddCommand(
		newRunCmd(e),
		newStopCmd(e),
		newUpdateCmd(e),
		newFreqCmd(e),
		newFromCmd(e),
		newStatusCmd(e),
		newHistoryCmd(e),
		newByeCmd(e),
		newTipCmd(e),
	)
	return root
}
