package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	// ZThreshold marks a feature as a direct contributor when |z| exceeds it.
	ZThreshold = 3.0

	// CombinedThreshold is the χ² critical value for five degrees of freedom
	// at p = 0.001. A sum of squared z-scores above it is anomalous even when
	// no single feature crosses ZThreshold.
	CombinedThreshold = 20.515

	// Multivariate labels an anomaly with no single contributing feature.
	Multivariate = "multivariate"
)

const nFeatures = 5

// Features are the raw columns scored against the baseline.
var Features = [nFeatures]string{"temp_C", "humidity_%", "accel_x", "accel_y", "accel_z"}

// ErrEmptyBaseline is returned when a baseline has no usable rows.
var ErrEmptyBaseline = errors.New("collector: baseline has no rows")

func featureValues(r Record) [nFeatures]float64 {
	return [nFeatures]float64{
		float64(r.TemperatureC),
		float64(r.HumidityPct),
		float64(r.Accel.X),
		float64(r.Accel.Y),
		float64(r.Accel.Z),
	}
}

// Stat is a feature's baseline mean and population standard deviation.
type Stat struct {
	Mean, Std float64
}

// Baseline accumulates per-feature statistics (Welford).
type Baseline struct {
	n    int
	mean [nFeatures]float64
	m2   [nFeatures]float64
}

// Add folds r into the statistics. Records with a non-finite feature are
// skipped.
func (b *Baseline) Add(r Record) {
	x := featureValues(r)
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	b.n++
	for i, v := range x {
		d := v - b.mean[i]
		b.mean[i] += d / float64(b.n)
		b.m2[i] += d * (v - b.mean[i])
	}
}

// Len is the number of records folded in.
func (b *Baseline) Len() int { return b.n }

// Stats returns the statistics in Features order.
func (b *Baseline) Stats() [nFeatures]Stat {
	var s [nFeatures]Stat
	if b.n == 0 {
		return s
	}
	for i := range s {
		s[i] = Stat{Mean: b.mean[i], Std: math.Sqrt(b.m2[i] / float64(b.n))}
	}
	return s
}

// Verdict is the result of scoring one record.
type Verdict struct {
	Z            [nFeatures]float64
	Score        float64 // sum of squared z-scores
	Anomaly      bool
	Contributors []string
}

// Label joins the contributors with commas; empty when normal.
func (v Verdict) Label() string { return strings.Join(v.Contributors, ",") }

// Score computes per-feature z-scores for r. A feature with zero spread in
// the baseline scores 0.
func (b *Baseline) Score(r Record) Verdict {
	var v Verdict
	st := b.Stats()
	for i, x := range featureValues(r) {
		if st[i].Std == 0 {
			continue
		}
		z := (x - st[i].Mean) / st[i].Std
		v.Z[i] = z
		v.Score += z * z
		if math.Abs(z) > ZThreshold {
			v.Contributors = append(v.Contributors, Features[i])
		}
	}
	v.Anomaly = len(v.Contributors) > 0 || v.Score > CombinedThreshold
	if v.Anomaly && len(v.Contributors) == 0 {
		v.Contributors = []string{Multivariate}
	}
	return v
}

// LoadBaseline builds a Baseline from CSV written with Columns.
func LoadBaseline(r io.Reader) (*Baseline, error) {
	b := &Baseline{}
	err := readRecords(r, func(rec Record) error {
		b.Add(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if b.Len() == 0 {
		return nil, ErrEmptyBaseline
	}
	return b, nil
}

// LoadBaselineFile opens path and calls LoadBaseline.
func LoadBaselineFile(path string) (*Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("baseline open: %w", err)
	}
	defer f.Close()
	b, err := LoadBaseline(f)
	if err != nil {
		return nil, fmt.Errorf("baseline %s: %w", path, err)
	}
	return b, nil
}

func readRecords(r io.Reader, fn func(Record) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	index := HeaderIndex(header)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csv read: %w", err)
		}
		rec, err := ParseRecord(index, row)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// LabeledColumns is Columns followed by the z-scores, the anomaly flag and
// the contributing features.
func LabeledColumns() []string {
	cols := append([]string(nil), Columns...)
	for _, f := range Features {
		cols = append(cols, "z_"+f)
	}
	return append(cols, "anomaly", "contributing_features")
}

func labeledFields(r Record, v Verdict) []string {
	row := r.Fields()
	for _, z := range v.Z {
		row = append(row, strconv.FormatFloat(z, 'f', 3, 64))
	}
	flag := "0"
	if v.Anomaly {
		flag = "1"
	}
	return append(row, flag, v.Label())
}

// Label scores every record in in against b and writes labeled CSV to out.
// It returns the number of rows and of anomalies written.
func Label(b *Baseline, in io.Reader, out io.Writer) (rows, anomalies int, err error) {
	w := csv.NewWriter(out)
	if err := w.Write(LabeledColumns()); err != nil {
		return 0, 0, fmt.Errorf("csv write: %w", err)
	}
	err = readRecords(in, func(rec Record) error {
		v := b.Score(rec)
		rows++
		if v.Anomaly {
			anomalies++
		}
		return w.Write(labeledFields(rec, v))
	})
	w.Flush()
	return rows, anomalies, errors.Join(err, w.Error())
}

// LabeledCSVSink scores each record against a baseline as it arrives and
// writes the labeled row. Anomalies are also logged.
type LabeledCSVSink struct {
	out    *CSVSink
	base   *Baseline
	logger *slog.Logger
}

// OpenLabeledCSV creates path and writes LabeledColumns.
func OpenLabeledCSV(path string, b *Baseline, logger *slog.Logger) (*LabeledCSVSink, error) {
	s, err := createCSV(path, LabeledColumns())
	if err != nil {
		return nil, err
	}
	return &LabeledCSVSink{out: s, base: b, logger: logger}, nil
}

func (s *LabeledCSVSink) Write(r Record) error {
	v := s.base.Score(r)
	if v.Anomaly {
		s.logger.Warn("anomaly detected",
			"contributors", v.Label(),
			"score", v.Score,
			"accel_mag", r.AccelMag(),
		)
	}
	return s.out.writeRow(labeledFields(r, v))
}

func (s *LabeledCSVSink) Close() error { return s.out.Close() }
