package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/config"
	"github.com/banshee-data/jumpshot/internal/db"
	"github.com/banshee-data/jumpshot/internal/engine"
	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/monitoring"
	"github.com/banshee-data/jumpshot/internal/movement"
	"github.com/banshee-data/jumpshot/internal/report"
	"github.com/banshee-data/jumpshot/internal/shot"
)

type options struct {
	RecordingPath string
	ConfigPath    string
	DBPath        string
	Key           string
	Consensus     bool
	NoCalibration bool
	Prune         bool
	ChartPath     string
	JSON          bool
	Debug         bool
	Stream        bool
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func run(ctx context.Context, opts options, out io.Writer) error {
	tuning, err := loadTuning(opts.ConfigPath)
	if err != nil {
		return err
	}
	samples, err := imu.LoadRecording(opts.RecordingPath)
	if err != nil {
		return err
	}

	cfg := shot.ConfigFromTuning(tuning)
	cfg.ConsensusEnabled = cfg.ConsensusEnabled || opts.Consensus
	cfg.CalibrationEnabled = cfg.CalibrationEnabled && !opts.NoCalibration
	cfg.Burst.Enabled = cfg.Burst.Enabled || opts.Prune
	cfg.Debug = opts.Debug
	detector := shot.NewDetector(cfg)

	if opts.DBPath != "" && cfg.CalibrationEnabled {
		database, err := db.NewDB(opts.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()
		set := calibration.Load(ctx, database, opts.Key)
		if set == nil {
			monitoring.Logf("no usable calibration set %q; running uncalibrated", opts.Key)
		}
		detector.SetCalibration(set)
	}

	var records []shot.Record
	if opts.Stream {
		eng := engine.NewWithComponents(
			imu.NewBufferFromTuning(tuning),
			movement.NewTracker(movement.ConfigFromTuning(tuning)),
			detector,
		)
		records, err = replay(ctx, eng, samples)
	} else {
		records, err = detector.DetectAll(ctx, samples)
	}
	if err != nil {
		return fmt.Errorf("detection aborted: %w", err)
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []shot.Record{}
		}
		if err := enc.Encode(records); err != nil {
			return err
		}
	} else {
		printSummary(out, samples, records)
	}

	if opts.ChartPath != "" {
		f, err := os.Create(opts.ChartPath)
		if err != nil {
			return fmt.Errorf("failed to create chart: %w", err)
		}
		defer f.Close()
		if err := report.Render(f, samples, records, report.Options{Title: opts.RecordingPath}); err != nil {
			return err
		}
	}
	return nil
}

// replay pushes samples through eng one at a time, as a live session
// would, and returns the streamed shots. The streamed shots still in the
// engine's buffer are then checked against a batch re-analysis of it.
func replay(ctx context.Context, eng *engine.Engine, samples []imu.Sample) ([]shot.Record, error) {
	var streamed []shot.Record
	for i, s := range samples {
		if i%replayCtxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if u := eng.Process(s); u.Shot != nil {
			streamed = append(streamed, *u.Shot)
		}
	}

	batch, err := eng.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	offset := eng.Buffer().Offset()
	var buffered int
	for _, r := range streamed {
		if r.PeakIndex >= offset {
			buffered++
		}
	}
	if buffered != len(batch) {
		monitoring.Logf("replay: %d streamed shots in the last %d samples, batch re-analysis finds %d",
			buffered, eng.Buffer().Len(), len(batch))
	}
	return streamed, nil
}

const replayCtxCheckInterval = 4096

func printSummary(out io.Writer, samples []imu.Sample, records []shot.Record) {
	var durationMs int64
	if len(samples) > 1 {
		durationMs = samples[len(samples)-1].T - samples[0].T
	}
	fmt.Fprintf(out, "%d samples over %.1fs, %d shots\n", len(samples), float64(durationMs)/1000, len(records))
	for i, r := range records {
		line := fmt.Sprintf("%3d  t=%8.2fs  peak=%6.2f  dip=%5.2f  rec=%6.2f  range=%6.2f",
			i+1, float64(r.Timestamp-samples[0].T)/1000, r.PeakMag, r.DipMag, r.RecoveryMag, r.Range)
		if r.Consensus != nil {
			line += fmt.Sprintf("  votes=%d/%d", r.Consensus.Votes, len(r.Consensus.Methods))
		}
		if r.Calibration != nil {
			line += fmt.Sprintf("  calib=%s(%.2f)", r.Calibration.Reason, r.Calibration.Confidence)
		}
		fmt.Fprintln(out, line)
	}
}
