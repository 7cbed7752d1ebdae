package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jask/teamperf/internal/metrics"
	"github.com/jask/teamperf/internal/scenario"
)

func newRunCmd(a *app) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Replay a TOML or YAML scenario without the terminal view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScenario(cmd, args[0], label)
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "journal label (default: scenario name)")
	return cmd
}

func (a *app) runScenario(cmd *cobra.Command, path, label string) error {
	f, err := scenario.Load(path)
	if err != nil {
		return err
	}
	plan, err := scenario.Compile(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if label == "" {
		label = plan.Name
	}
	if label == "" {
		label = path
	}

	ctx := cmd.Context()
	store := a.newStore(plan.Initial)

	var runID string
	if a.cfg.Journal.Enabled {
		j, err := a.openJournal()
		if err != nil {
			return err
		}
		defer j.Close()
		if runID, err = j.recorder.Begin(ctx, label); err != nil {
			return err
		}
		defer func() {
			if err := j.recorder.End(context.Background()); err != nil {
				a.log.Warn("close journal run", zap.Error(err))
			}
			if n := j.recorder.Failures(); n > 0 {
				a.log.Warn("journal entries dropped", zap.Int("count", n))
			}
		}()
		store.Subscribe(j.recorder.Observe)
	}

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(loopCtx)
	if a.cfg.Metrics.Addr != "" {
		collector := metrics.New()
		store.Subscribe(collector.Observe)
		g.Go(func() error { return collector.Serve(gctx, a.cfg.Metrics.Addr, a.log.Named("metrics")) })
	}
	g.Go(func() error { return ignoreCanceled(store.Run(gctx)) })

	replayErr := scenario.Replay(gctx, store, plan)
	final := store.State()
	stop()
	if err := g.Wait(); err != nil {
		return err
	}
	if replayErr != nil {
		return fmt.Errorf("replay %s: %w", label, replayErr)
	}

	a.log.Info("scenario replayed", zap.String("label", label), zap.Int("steps", len(plan.Steps)))
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario %s: %d steps\n", label, len(plan.Steps))
	fmt.Fprintf(out, "clock=%.3f timer=%t teams=%d entities=%d\n",
		final.Clock, final.TimerOn, final.Teams.Len(), final.EntityCount())
	if runID != "" {
		fmt.Fprintf(out, "journal run %s\n", runID)
	}
	return nil
}
