package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/teamperf/internal/config"
	"github.com/jask/teamperf/internal/core"
	"github.com/jask/teamperf/internal/database"
	"github.com/jask/teamperf/internal/database/repository"
	"github.com/jask/teamperf/internal/domain"
	"github.com/jask/teamperf/internal/logging"
	"github.com/jask/teamperf/internal/service"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	cfgPath string
	debug   bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "teamperf",
		Short: "Scoped state composition over a team/game/video/member tree",
		Long: `teamperf keeps a nested tree of teams, games, videos and members in a
single store and routes every change through one reducer. Run it with no
subcommand to open the terminal view.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: a.runTUI,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVar(&a.debug, "verbose", false, "log at debug level")

	root.AddCommand(
		newTUICmd(a),
		newRunCmd(a),
		newBenchCmd(a),
		newJournalCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := cfg.Log
	// The terminal view owns stdout and stderr.
	if logCfg.Path == "" && isTUI(cmd) {
		logCfg.Path = filepath.Join(filepath.Dir(cfg.Journal.Path), "teamperf.log")
	}
	log, err := logging.New(logCfg, a.debug)
	if err != nil {
		return err
	}
	a.log = log.With(zap.String("cmd", cmd.Name()))
	return nil
}

func isTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

func (a *app) newStore(initial domain.State) *core.Store {
	reducer := &core.Reducer{
		Log:           a.log.Named("reducer"),
		Leaves:        service.LeafReducers(),
		TimerInterval: a.cfg.Timer.Interval,
		VerboseReset:  a.cfg.Verbose.Reset,
	}
	return core.NewStore(initial, reducer, core.StoreOptions{
		Log:       a.log.Named("store"),
		QueueSize: a.cfg.Store.QueueSize,
	})
}

// journal is an open action journal.
type journal struct {
	db       *sql.DB
	runs     *repository.RunRepo
	entries  *repository.EntryRepo
	recorder *service.Recorder
}

func (a *app) openJournal() (*journal, error) {
	path := a.cfg.Journal.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir journal dir: %w", err)
	}
	db, err := database.OpenMigrated(path)
	if err != nil {
		return nil, err
	}
	j := &journal{
		db:      db,
		runs:    repository.NewRunRepo(db),
		entries: repository.NewEntryRepo(db),
	}
	j.recorder = &service.Recorder{Runs: j.runs, Entries: j.entries, Log: a.log.Named("journal")}
	return j, nil
}

func (j *journal) Close() error { return j.db.Close() }

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
