package acquire

import (
	"errors"

	"nanosense-go/errcode"
)

var (
	errNoAmbient   = errors.New("acquire: no ambient sensor")
	errNoTransport = errors.New("acquire: no transport")
)

// HaltError is returned when initialisation fails and the loop has stopped
// for good.
type HaltError struct {
	C   errcode.Code // sensor_init_failed or transport_init_failed
	Op  string       // failing component
	Err error
}

func (e *HaltError) Error() string {
	s := "acquire: halted: " + string(e.C)
	if e.Op != "" {
		s += " (" + e.Op + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *HaltError) Unwrap() error      { return e.Err }
func (e *HaltError) Code() errcode.Code { return e.C }
