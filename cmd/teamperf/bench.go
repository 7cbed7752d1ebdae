package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/scope"
	"github.com/jask/teamperf/internal/service"
)

type benchCase struct {
	name   string
	action func(domain.State) core.Action
}

var benchCases = []benchCase{
	{"tick", func(domain.State) core.Action { return core.Tick{Time: 1} }},
	{"increment", func(domain.State) core.Action { return core.Increment{} }},
	{"rename video", func(s domain.State) core.Action {
		return core.Wrap(scope.SelectionPath(s, scope.Video), core.Leaf{Op: "rename", Value: "bench"})
	}},
	{"rename member", func(s domain.State) core.Action {
		return core.Wrap(scope.SelectionPath(s, scope.Member), core.Leaf{Op: "rename", Value: "bench"})
	}},
}

// benchResult is the mean reduce time for one action against one tree.
type benchResult struct {
	Tree    string
	Action  string
	PerOp   time.Duration
	Entries int
}

func runBench(reducer *core.Reducer, iterations int) []benchResult {
	trees := []struct {
		name  string
		state domain.State
	}{
		{"small", domain.SmallState()},
		{"big", domain.BigState()},
	}
	var out []benchResult
	for _, tree := range trees {
		for _, bc := range benchCases {
			s := tree.state
			act := bc.action(s)
			start := time.Now()
			for i := 0; i < iterations; i++ {
				s, _ = reducer.Apply(s, act)
			}
			out = append(out, benchResult{
				Tree:    tree.name,
				Action:  bc.name,
				PerOp:   time.Since(start) / time.Duration(iterations),
				Entries: s.EntityCount(),
			})
		}
	}
	return out
}

func newBenchCmd(a *app) *cobra.Command {
	var iterations int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time the reducer against the small and big trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if iterations <= 0 {
				return fmt.Errorf("--iterations must be positive")
			}
			reducer := &core.Reducer{
				Log:           a.log.Named("reducer"),
				Leaves:        service.LeafReducers(),
				TimerInterval: a.cfg.Timer.Interval,
				VerboseReset:  a.cfg.Verbose.Reset,
			}
			t := table.New().Headers("tree", "action", "per op", "entities")
			for _, r := range runBench(reducer, iterations) {
				t.Row(r.Tree, r.Action, r.PerOp.String(), fmt.Sprint(r.Entries))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 10000, "applications per action")
	return cmd
}
