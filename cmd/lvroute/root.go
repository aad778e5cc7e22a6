package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvroute/config"
	"github.com/katalvlaran/lvroute/logging"
	"github.com/katalvlaran/lvroute/markers"
	"github.com/katalvlaran/lvroute/persist"
	"github.com/katalvlaran/lvroute/planner"
)

// app carries flag values and the components built from them.
type app struct {
	cfgPath     string
	dbPath      string
	logLevel    string
	markersPath string
	routeName   string

	cfg     config.Config
	log     zerolog.Logger
	store   *markers.Store
	repo    *persist.Repository
	planner *planner.Planner
	closeDB func()
}

func newRootCmd() *cobra.Command {
	a := &app{closeDB: func() {}}

	root := &cobra.Command{
		Use:           "lvroute",
		Short:         "Plan short routes through map markers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.closeDB()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (json, yaml or toml)")
	pf.StringVar(&a.dbPath, "db", "", "route database (overrides storage.dsn)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (overrides logLevel)")
	pf.StringVar(&a.markersPath, "markers", "markers.json", "marker file")
	pf.StringVar(&a.routeName, "name", "", "route name (overrides storage.routeName)")

	root.AddCommand(
		newSolveCmd(a),
		newExpandCmd(a),
		newShowCmd(a),
		newDeleteMarkerCmd(a),
		newListCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.dbPath != "" {
		cfg.Storage.DSN = a.dbPath
	}
	if a.routeName != "" {
		cfg.Storage.RouteName = a.routeName
	}
	a.cfg = cfg

	if a.log, err = logging.ForTerminal(cfg.LogLevel, os.Stderr); err != nil {
		return err
	}

	db, err := persist.Open(cfg.StorageOptions(), a.log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closeDB = func() { _ = sqlDB.Close() }
	}
	if a.repo, err = persist.NewRepository(db, a.log); err != nil {
		return err
	}

	if cmd.Name() == "list" {
		return nil
	}
	if a.store, err = markers.LoadFile(a.markersPath, a.log); err != nil {
		return err
	}

	opts := planner.OptionsFrom(cfg)
	opts.Autosave = false
	a.planner = planner.New(a.store, a.repo, opts, nil, a.log)

	return nil
}

// loadRoute restores the named route; a missing route is not an error when
// optional is set.
func (a *app) loadRoute(optional bool) (bool, error) {
	rep, err := a.planner.Load(a.cfg.Storage.RouteName)
	if errors.Is(err, persist.ErrNotFound) && optional {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rep.Degraded > 0 {
		a.log.Warn().Int("degraded", rep.Degraded).Msg("some waypoints lost their marker")
	}
	return true, nil
}

func (a *app) saveRoute() error {
	if err := a.planner.Save(a.cfg.Storage.RouteName); err != nil {
		return fmt.Errorf("save route %q: %w", a.cfg.Storage.RouteName, err)
	}
	return nil
}
