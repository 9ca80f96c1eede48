package types

// ---- Diagnostic payloads published on the local bus (retained where noted) ----

// LoopState is retained at sense/state.
type LoopState struct {
	Level string `json:"level"` // "idle", "connected", "halted"
	Peer  string `json:"peer,omitempty"`
	Code  string `json:"code,omitempty"` // errcode for "halted"
	TSms  int64  `json:"ts_ms"`
}

// SampleReport is published at sense/sample after each update.
type SampleReport struct {
	Sample   Sample   `json:"sample"`
	Centi    [3]int16 `json:"centi"` // encoded ambient, humidity, external
	WriteErr string   `json:"write_err,omitempty"`
	TSms     int64    `json:"ts_ms"`

	// Per-sensor read failures as errcode strings, empty when the read succeeded.
	AmbientErr  string `json:"ambient_err,omitempty"`
	ExternalErr string `json:"external_err,omitempty"`
	AccelErr    string `json:"accel_err,omitempty"`
}

// ScanReport is retained at sense/scan after bus discovery.
type ScanReport struct {
	Bus       string   `json:"bus"`
	Addresses []uint16 `json:"addresses"`
	Code      string   `json:"code,omitempty"` // "no_devices" when nothing acked
	TSms      int64    `json:"ts_ms"`
}

// InitReport is published at sense/init/<component> during startup.
type InitReport struct {
	Component string `json:"component"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}
