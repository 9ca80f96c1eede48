package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSampleReportJSONKeys(t *testing.T) {
	rep := SampleReport{
		Sample:      Sample{AmbientC: 23.5, HumidityPct: 45, External: Valid(18)},
		Centi:       [3]int16{2350, 4500, 1800},
		ExternalErr: "short_read",
		TSms:        1,
	}
	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"sample":{`, `"ambient_c":23.5`, `"centi":[2350,4500,1800]`, `"external_err":"short_read"`, `"ts_ms":1`} {
		if !strings.Contains(out, want) {
			t.Fatalf("%s missing %s", out, want)
		}
	}
	if strings.Contains(out, "ambient_err") || strings.Contains(out, "Sample") {
		t.Fatalf("unexpected keys in %s", out)
	}
}
