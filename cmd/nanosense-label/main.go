// Command nanosense-label scores a recorded CSV against a baseline CSV and
// writes each row with its z-scores, anomaly flag and contributing features.
//
//	nanosense-label baseline.csv live.csv [labeled.csv]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"nanosense-go/services/collector"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen})))

	args := os.Args[1:]
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: nanosense-label baseline.csv input.csv [output.csv]")
		os.Exit(2)
	}
	out := "labeled.csv"
	if len(args) == 3 {
		out = args[2]
	}
	if err := run(args[0], args[1], out); err != nil {
		slog.Error("label failed", "err", err)
		os.Exit(1)
	}
}

func run(baselinePath, inPath, outPath string) error {
	base, err := collector.LoadBaselineFile(baselinePath)
	if err != nil {
		return err
	}
	for i, st := range base.Stats() {
		slog.Debug("baseline", "feature", collector.Features[i], "mean", st.Mean, "std", st.Std)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	rows, anomalies, err := collector.Label(base, in, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	slog.Info("labeled", "rows", rows, "anomalies", anomalies, "baseline_rows", base.Len(), "output", outPath)
	return nil
}
