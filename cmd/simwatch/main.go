package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/justin-oleary/simwatch/pkg/config"
	"github.com/justin-oleary/simwatch/pkg/poller"
	"github.com/justin-oleary/simwatch/pkg/procs"
	"github.com/justin-oleary/simwatch/pkg/report"
	"github.com/justin-oleary/simwatch/pkg/scan"
	"github.com/justin-oleary/simwatch/pkg/server"
)

func main() {
	// stdout carries the console summary, so logs go to stderr
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()})))

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := config.Defaults()
	intervalSecs := int(o.Interval / time.Second)

	cmd := &cobra.Command{
		Use:   "simwatch [OUTPUT_DIR]",
		Short: "Monitor a tree of simulator experiments and keep a status report up to date",
		Long: `simwatch scans a simulator output directory, infers the state of every
experiment from its run log and stats file, computes the overhead of each
validation latency against the benchmark baseline and writes a self-contained
report next to the experiments. With --watch it repeats every --interval
seconds; with --serve it also serves the directory over HTTP.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.Dir = args[0]
			}
			o.Interval = time.Duration(intervalSecs) * time.Second

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, o, cmd.OutOrStdout(), slog.Default())
		},
	}

	f := cmd.Flags()
	f.BoolVar(&o.Latest, "latest", false, "use the most recently created directory under --base-dir")
	f.StringVar(&o.BaseDir, "base-dir", o.BaseDir, "directory searched by --latest (env "+config.EnvBaseDir+")")
	f.BoolVarP(&o.Watch, "watch", "w", false, "keep rescanning and rewriting the report")
	f.IntVarP(&intervalSecs, "interval", "i", intervalSecs, "refresh interval in seconds (env "+config.EnvInterval+")")
	f.StringVarP(&o.Output, "output", "o", o.Output, "report file name, written inside the monitored directory")
	f.StringVar(&o.Format, "format", o.Format, "report format: html or json")
	f.StringVarP(&o.Benchmarks, "benchmarks", "b", "", "expected benchmarks, comma-separated")
	f.StringVarP(&o.Latencies, "latencies", "l", "", "expected latencies, comma-separated")
	f.StringVar(&o.MatrixFile, "matrix", "", "YAML file with the expected benchmarks and latencies")
	f.StringVar(&o.Title, "title", "", "report title")
	f.BoolVarP(&o.Serve, "serve", "s", false, "serve the monitored directory over HTTP")
	f.IntVarP(&o.Port, "port", "p", o.Port, "HTTP server port")
	f.StringVar(&o.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.StringVar(&o.ProcessName, "process-name", o.ProcessName, "simulator process name to look for in ps output")

	return cmd
}

// run resolves the configuration and drives the poller and the optional
// servers until the work is done or ctx is cancelled.
func run(ctx context.Context, o config.Options, out io.Writer, log *slog.Logger) error {
	cfg, err := config.Resolve(o)
	if err != nil {
		if config.IsResolveErr(err) {
			fmt.Fprintf(out, "Error: cannot resolve monitored directory: %v\n", err)
			log.Error("cannot resolve monitored directory", "err", err)
		} else {
			log.Error("invalid configuration", "err", err)
		}
		return err
	}
	renderer, err := report.ForFormat(cfg.Format)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Monitoring: %s\n", cfg.Dir)
	fmt.Fprintf(out, "Report: %s\n", cfg.OutputPath)
	if n := len(cfg.Matrix.Benchmarks); n > 0 {
		fmt.Fprintf(out, "Expected benchmarks: %d\n", n)
		if !cfg.AutoLatencies {
			fmt.Fprintf(out, "Expected latencies: %v\n", cfg.Matrix.Latencies)
			fmt.Fprintf(out, "Expected total experiments: %d\n", cfg.Matrix.Size())
		}
	}
	log.Info("simwatch starting", "config", cfg.String(), "watch", cfg.Watch, "interval", cfg.Interval)

	p := poller.New(poller.Config{
		Scanner: &scan.Scanner{
			Root:          cfg.Dir,
			Matrix:        cfg.Matrix,
			AutoLatencies: cfg.AutoLatencies,
			Logger:        log,
		},
		Procs:      procs.NewInspector(cfg.ProcessName),
		Renderer:   renderer,
		OutputPath: cfg.OutputPath,
		Title:      cfg.Title,
		Interval:   cfg.Interval,
		Watch:      cfg.Watch,
		Console:    out,
		Logger:     log,
	})

	// the first document exists before anything starts serving it
	if _, err := p.Step(ctx); err != nil {
		if !cfg.Watch {
			return err
		}
		log.Error("initial cycle failed", "err", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	serving := false

	if cfg.Serve {
		srv, err := server.Start(gctx, cfg.ServeAddr(), server.FileHandler(cfg.Dir), log)
		switch {
		case errors.Is(err, server.ErrAddrInUse):
			fmt.Fprintf(out, "Port %d is already in use - server may already be running\n", cfg.Port)
		case err != nil:
			log.Error("file server not started", "err", err)
		default:
			serving = true
			g.Go(srv.Wait)
			fmt.Fprintf(out, "Dashboard URL: http://localhost:%d/%s\n", cfg.Port, filepath.Base(cfg.OutputPath))
		}
	}

	if cfg.MetricsAddr != "" {
		msrv, err := server.Start(gctx, cfg.MetricsAddr, server.MetricsHandler(), log)
		if err != nil {
			log.Error("metrics endpoint not started", "addr", cfg.MetricsAddr, "err", err)
		} else {
			g.Go(msrv.Wait)
		}
	}

	if cfg.Watch {
		g.Go(func() error {
			// the initial Step already covered the first cycle
			if !sleep(gctx, cfg.Interval) {
				return nil
			}
			p.Run(gctx)
			return nil
		})
	} else if serving {
		fmt.Fprintln(out, "Serving until interrupted (Ctrl+C to stop)")
	} else {
		// one-shot without the file server: nothing left to wait for
		return nil
	}

	return g.Wait()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
