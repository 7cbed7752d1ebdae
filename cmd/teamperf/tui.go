package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/metrics"
	"github.com/jask/teamperf/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal view (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	initial := domain.SmallState()
	if a.cfg.UI.StartBig {
		initial = domain.BigState()
	}
	store := a.newStore(initial)

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Journal.Enabled {
		j, err := a.openJournal()
		if err != nil {
			return err
		}
		defer j.Close()
		if _, err := j.recorder.Begin(ctx, "tui"); err != nil {
			return err
		}
		defer func() {
			if err := j.recorder.End(context.Background()); err != nil {
				a.log.Warn("close journal run", zap.Error(err))
			}
		}()
		store.Subscribe(j.recorder.Observe)
	}

	if a.cfg.Metrics.Addr != "" {
		collector := metrics.New()
		store.Subscribe(collector.Observe)
		g.Go(func() error { return collector.Serve(gctx, a.cfg.Metrics.Addr, a.log.Named("metrics")) })
	}

	model := tui.New(store, initial, store.Verbose(), a.log.Named("tui"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
	store.Subscribe(tui.Forward(p))

	g.Go(func() error { return ignoreCanceled(store.Run(gctx)) })
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
