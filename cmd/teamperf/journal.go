package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/teamperf/internal/service"
)

func newJournalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect and maintain the action journal",
	}
	cmd.AddCommand(
		newJournalRunsCmd(a),
		newJournalShowCmd(a),
		newJournalPruneCmd(a),
		newJournalResetCmd(a),
	)
	return cmd
}

func newJournalRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.runs.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			t := table.New().Headers("id", "label", "started", "finished", "entries")
			for _, r := range runs {
				finished := "-"
				if r.FinishedAt != nil {
					finished = r.FinishedAt.Local().Format("2006-01-02 15:04:05")
				}
				t.Row(r.ID, r.Label, r.StartedAt.Local().Format("2006-01-02 15:04:05"), finished, strconv.Itoa(r.Entries))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func newJournalShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print every entry of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			run, err := j.runs.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			entries, err := j.entries.ListByRun(ctx, run.ID)
			if err != nil {
				return fmt.Errorf("list entries: %w", err)
			}
			counts, err := j.entries.CountByAction(ctx, run.ID)
			if err != nil {
				return fmt.Errorf("count entries: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (%s)\n", run.ID, run.Label)
			t := table.New().Headers("seq", "action", "path", "clock", "timer", "entities", "effects", "elapsed")
			for _, e := range entries {
				t.Row(
					strconv.FormatUint(e.Seq, 10),
					e.Action,
					e.Path,
					strconv.FormatFloat(e.Clock, 'f', 3, 64),
					strconv.FormatBool(e.TimerOn),
					strconv.Itoa(e.EntityCount),
					e.Effects,
					e.Elapsed.String(),
				)
			}
			fmt.Fprintln(out, t.Render())
			for _, name := range slices.Sorted(maps.Keys(counts)) {
				fmt.Fprintf(out, "%s: %d\n", name, counts[name])
			}
			return nil
		},
	}
}

func newJournalPruneCmd(a *app) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			removed, err := (&service.MaintenanceService{DB: j.db}).Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d runs\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 10, "runs to keep")
	return cmd
}

func newJournalResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset deletes the whole journal; pass --yes to confirm")
			}
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			if err := (&service.MaintenanceService{DB: j.db}).Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "journal reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
