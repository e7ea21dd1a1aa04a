// Command calibrate builds a calibration set from four labeled activity
// recordings and stores it in the calibration database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/version"
)

func main() {
	opts := options{Recordings: make(map[calibration.Activity]string)}
	for _, a := range calibration.Activities {
		flag.Func(string(a), fmt.Sprintf("Recording of %s activity (.json or .csv)", a), func(v string) error {
			opts.Recordings[a] = v
			return nil
		})
	}
	flag.StringVar(&opts.ConfigPath, "config", "", "Tuning config JSON (defaults built in)")
	flag.StringVar(&opts.DBPath, "db", "", "SQLite database to store the set in")
	flag.StringVar(&opts.Key, "key", "default", "Calibration set key")
	flag.StringVar(&opts.OutPath, "out", "", "Also write the encoded set to this file")
	flag.BoolVar(&opts.List, "list", false, "List stored calibration sets and exit")
	flag.BoolVar(&opts.Delete, "delete", false, "Delete the set stored under -key and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n       %s -db <path> migrate <up|down|status>\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("calibrate"))
		return
	}
	if flag.NArg() > 0 {
		if flag.Arg(0) != "migrate" {
			flag.Usage()
			os.Exit(2)
		}
		opts.Migrate = flag.Args()[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("calibrate: %v", err)
	}
}
