package errcode

// Code is a stable, console- and bus-facing diagnostic identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Fatal: the node enters the halted state.
	SensorInit    Code = "sensor_init_failed"
	TransportInit Code = "transport_init_failed"

	// Transient: reported per sample, the loop keeps running.
	ReadFailed    Code = "read_failed"
	ShortRead     Code = "short_read"
	PublishFailed Code = "publish_failed"
	Timeout       Code = "timeout"

	// Informational.
	NoDevices Code = "no_devices"

	InvalidConfig Code = "invalid_config"

	Error Code = "error" // generic fallback
)

// E wraps a Code with the operation that produced it and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		if inner := u.Unwrap(); inner != nil {
			return Of(inner)
		}
	}
	return Error
}

// Fatal reports whether c should stop the node.
func Fatal(c Code) bool {
	return c == SensorInit || c == TransportInit
}
