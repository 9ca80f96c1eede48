package collector

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"nanosense-go/protocol"
)

// Record is one decoded read of all four attributes.
type Record struct {
	Time time.Time
	protocol.Reading
}

// Columns is the CSV header.
var Columns = []string{"timestamp", "temp_C", "humidity_%", "ext_temp_C", "accel_x", "accel_y", "accel_z", "accel_mag"}

// AccelMag is the Euclidean norm of the acceleration vector.
func (r Record) AccelMag() float64 {
	x, y, z := float64(r.Accel.X), float64(r.Accel.Y), float64(r.Accel.Z)
	return math.Sqrt(x*x + y*y + z*z)
}

// Fields renders r in Columns order.
func (r Record) Fields() []string {
	return []string{
		r.Time.Format(time.RFC3339Nano),
		ftoa(r.TemperatureC),
		ftoa(r.HumidityPct),
		ftoa(r.ExternalC),
		ftoa(r.Accel.X),
		ftoa(r.Accel.Y),
		ftoa(r.Accel.Z),
		strconv.FormatFloat(r.AccelMag(), 'f', -1, 64),
	}
}

// ParseRecord reads a row written with Columns. index maps column names to
// positions; accel_mag is derived and never read back.
func ParseRecord(index map[string]int, row []string) (Record, error) {
	var r Record
	ts, err := field(index, row, "timestamp")
	if err != nil {
		return r, err
	}
	if r.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return r, fmt.Errorf("timestamp %q: %w", ts, err)
	}
	dst := []struct {
		col string
		v   *float32
	}{
		{"temp_C", &r.TemperatureC},
		{"humidity_%", &r.HumidityPct},
		{"ext_temp_C", &r.ExternalC},
		{"accel_x", &r.Accel.X},
		{"accel_y", &r.Accel.Y},
		{"accel_z", &r.Accel.Z},
	}
	for _, d := range dst {
		s, err := field(index, row, d.col)
		if err != nil {
			return r, err
		}
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return r, fmt.Errorf("%s %q: %w", d.col, s, err)
		}
		*d.v = float32(f)
	}
	return r, nil
}

// HeaderIndex maps each column name in header to its position.
func HeaderIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[h] = i
	}
	return m
}

func field(index map[string]int, row []string, col string) (string, error) {
	i, ok := index[col]
	if !ok {
		return "", fmt.Errorf("missing column %s", col)
	}
	if i >= len(row) {
		return "", fmt.Errorf("short row: no %s", col)
	}
	return row[i], nil
}

func ftoa(v float32) string { return strconv.FormatFloat(float64(v), 'f', -1, 32) }
