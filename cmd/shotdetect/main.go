// Command shotdetect re-analyses a recorded session in batch mode and
// reports the detected jump shots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/jumpshot/internal/version"
)

func main() {
	opts := options{}
	flag.StringVar(&opts.ConfigPath, "config", "", "Tuning config JSON (defaults built in)")
	flag.StringVar(&opts.DBPath, "db", "", "SQLite database holding calibration sets")
	flag.StringVar(&opts.Key, "key", "default", "Calibration set key")
	flag.BoolVar(&opts.Consensus, "consensus", false, "Enable the consensus post-filter")
	flag.BoolVar(&opts.NoCalibration, "no-calibration", false, "Disable the calibration post-filter")
	flag.BoolVar(&opts.Prune, "prune", false, "Thin bursts of shots")
	flag.StringVar(&opts.ChartPath, "chart", "", "Write an HTML diagnostic chart to this path")
	flag.BoolVar(&opts.JSON, "json", false, "Print shot records as JSON")
	flag.BoolVar(&opts.Debug, "debug", false, "Log post-filter rejections")
	flag.BoolVar(&opts.Stream, "stream", false, "Replay the recording through the streaming engine instead of batch mode")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <recording.json|recording.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("shotdetect"))
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.RecordingPath = flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("shotdetect: %v", err)
	}
}
