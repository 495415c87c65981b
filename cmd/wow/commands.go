package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/wow/internal/app"
	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/internal/history"
	"github.com/bft-labs/wow/internal/metrics"
	"github.com/bft-labs/wow/internal/output"
	"github.com/bft-labs/wow/pkg/log"
	"github.com/bft-labs/wow/pkg/state"
)

func newHelpCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Show help and the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			if err := target.Help(); err != nil {
				return err
			}
			st, err := app.LoadState(cmd.Context(), e.repo, e.logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			e.printer.Config(st)
			return nil
		},
	}
}

func newRunCmd(e *env) *cobra.Command {
	var foreground bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the background daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if foreground {
				return e.runDaemon(cmd.Context())
			}

			st, err := app.LoadState(cmd.Context(), e.repo, e.logger)
			if err != nil {
				return err
			}
			if st.Running {
				return domain.ErrAlreadyRunning
			}
			pid, err := startDaemon(e.cfg.Workspace, daemonArgs(cmd, e.cfg.Workspace))
			if err != nil {
				return err
			}
			e.printer.Success("daemon started (pid %d), logging to %s", pid, logFileName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&foreground, "foreground", false, "run the daemon loop in this process")
	_ = cmd.Flags().MarkHidden("foreground")
	return cmd
}

// daemonArgs rebuilds the child command line from explicitly set flags.
func daemonArgs(cmd *cobra.Command, workspace string) []string {
	args := []string{"run", "--foreground", "--workspace=" + workspace}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == "workspace" || f.Name == "foreground" {
			return
		}
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return args
}

func (e *env) runDaemon(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := newSession()
	e.logger = e.logger.With("session", session)

	var (
		rec     metrics.Recorder = metrics.NoopRecorder{}
		handler http.Handler
	)
	if e.cfg.MetricsAddr != "" {
		pr := metrics.NewPrometheusRecorder(prom.NewRegistry())
		rec, handler = pr, pr.Handler()
	}

	engine := e.newEngine(session, rec)

	var pruner app.Pruner
	if store := e.openHistory(); store != nil {
		pruner = store
	}

	d := app.NewDaemon(app.DaemonConfig{
		Workspace:    e.cfg.Workspace,
		StatePath:    e.repo.Path(),
		PollInterval: e.cfg.PollInterval,
		WatchState:   e.cfg.WatchState,
		HistoryKeep:  e.cfg.HistoryKeep,
		MetricsAddr:  e.cfg.MetricsAddr,
	}, e.repo, engine, pruner, handler, rec, e.logger)
	return d.Run(ctx)
}

func newStopCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Ask the running daemon to stop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequestStop(cmd.Context(), e.repo, e.logger); err != nil {
				return err
			}
			e.printer.Success("stop requested")
			return nil
		},
	}
}

func newUpdateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch and apply a new wallpaper now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.update(cmd.Context(), true)
		},
	}
}

func newFreqCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "freq <hours>",
		Short: "Set the update interval in hours (fractions allowed)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidArgument, args[0])
			}
			st, err := app.SetFrequency(cmd.Context(), e.repo, e.logger, hours)
			if err != nil {
				return err
			}
			e.printer.Success("wallpaper will update every %s hours", output.FormatHours(st.IntervalHours()))
			return nil
		},
	}
}

func newFromCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "from <1|2>",
		Short: "Select the image source (1 bing random, 2 bing every-day)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not a source number", domain.ErrInvalidArgument, args[0])
			}
			st, err := app.SetSource(cmd.Context(), e.repo, e.logger, v)
			if err != nil {
				return err
			}
			e.printer.Success("image source set to %s", st.Source.Label())
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the workspace state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.LoadState(cmd.Context(), e.repo, e.logger)
			if err != nil {
				return err
			}
			e.printer.Status(st, e.cfg.Workspace)
			return nil
		},
	}
}

func newHistoryCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent update attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("%w: -n must be positive", domain.ErrInvalidArgument)
			}
			store := e.openHistory()
			if store == nil {
				return fmt.Errorf("history database unavailable")
			}
			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			e.printer.History(entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show")
	return cmd
}

func newByeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bye",
		Short: "Remove wallpapers and wow data from the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := app.Uninstall(cmd.Context(), e.repo, e.cfg.Workspace, e.logger,
				state.FileName, history.FileName, logFileName)
			for _, p := range removed {
				e.logger.Debug("removed", log.String("path", p))
			}
			if err != nil {
				return err
			}
			e.printer.Success("removed %d files, delete the wow executable to finish", len(removed))
			return nil
		},
	}
}

func newTipCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tip",
		Short: "Say thanks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.printer.Tip(time.Now())
			return nil
		},
	}
}

// exactArgs is cobra.ExactArgs reporting ErrInvalidArgument.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d argument(s), got %d", domain.ErrInvalidArgument, cmd.Name(), n, len(args))
		}
		return nil
	}
}
