package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/config"
	"github.com/banshee-data/jumpshot/internal/db"
	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/timeutil"
)

type options struct {
	Recordings map[calibration.Activity]string
	ConfigPath string
	DBPath     string
	Key        string
	OutPath    string
	List       bool
	Delete     bool
	// Migrate holds the migrate action and its arguments; nil when the
	// migrate subcommand was not given.
	Migrate []string
}

func run(ctx context.Context, opts options, out io.Writer) error {
	switch {
	case opts.Migrate != nil:
		if opts.DBPath == "" {
			return errors.New("migrate requires -db")
		}
		return db.RunMigrateCommand(opts.Migrate, opts.DBPath, out)
	case opts.List:
		return list(ctx, opts, out)
	case opts.Delete:
		return remove(ctx, opts, out)
	}
	if opts.Recordings[calibration.Shooting] == "" {
		return errors.New("a -shooting recording is required")
	}
	if opts.DBPath == "" && opts.OutPath == "" {
		return errors.New("nowhere to store the set: pass -db and/or -out")
	}

	tuning := config.EmptyTuningConfig()
	if opts.ConfigPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(opts.ConfigPath); err != nil {
			return err
		}
	}

	recordings := make(map[calibration.Activity][]imu.Sample, len(opts.Recordings))
	for a, path := range opts.Recordings {
		samples, err := imu.LoadRecording(path)
		if err != nil {
			return fmt.Errorf("%s recording: %w", a, err)
		}
		recordings[a] = samples
	}

	var store calibration.Store
	if opts.DBPath != "" {
		database, err := db.NewDB(opts.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()
		store = database
	}

	c := calibration.NewCalibrator(calibration.ConfigFromTuning(tuning), store, timeutil.RealClock{})
	set, err := c.Calibrate(ctx, recordings, opts.Key)
	if err != nil {
		return err
	}

	if opts.OutPath != "" {
		data, err := calibration.Encode(set)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.OutPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.OutPath, err)
		}
	}

	fmt.Fprintf(out, "calibration set %s (key %q)\n", set.ID, opts.Key)
	for _, a := range calibration.Activities {
		if _, ok := recordings[a]; !ok {
			continue
		}
		fmt.Fprintf(out, "  %-10s %4d patterns\n", a, set.PatternCounts[a])
	}
	if !set.Usable() {
		fmt.Fprintln(out, "warning: no shooting patterns found; detection will run uncalibrated")
		return nil
	}
	printProfile(out, set.Profile(calibration.Shooting))
	return nil
}

func printProfile(out io.Writer, p *calibration.Profile) {
	fmt.Fprintf(out, "%s profile (%d patterns):\n", p.Activity, p.Count)
	for i, name := range calibration.FeatureNames() {
		fs := p.Features[i]
		fmt.Fprintf(out, "  %-18s mean=%9.3f  std=%8.3f\n", name, fs.Mean, fs.Std)
	}
}

func list(ctx context.Context, opts options, out io.Writer) error {
	if opts.DBPath == "" {
		return errors.New("-list requires -db")
	}
	database, err := db.NewDB(opts.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := database.ListCalibrations(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%-20s %8d bytes  %s\n", e.Key, e.Size, e.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func remove(ctx context.Context, opts options, out io.Writer) error {
	if opts.DBPath == "" {
		return errors.New("-delete requires -db")
	}
	database, err := db.NewDB(opts.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteCalibration(ctx, opts.Key); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("no calibration set stored under %q", opts.Key)
		}
		return err
	}
	fmt.Fprintf(out, "deleted calibration set %q\n", opts.Key)
	return nil
}
