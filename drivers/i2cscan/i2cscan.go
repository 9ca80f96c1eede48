// Package i2cscan enumerates responding devices on a shared I2C bus.
//
// It is a startup diagnostic: nothing at runtime depends on its result, and
// an empty bus is reported rather than treated as an error.
package i2cscan

import "tinygo.org/x/drivers"

// Valid 7-bit range probed by Scan. 0x00 (general call) and 0x7F are skipped.
const (
	FirstAddress uint16 = 1
	LastAddress  uint16 = 126
)

// Result of one scan.
type Result struct {
	Addresses []uint16
}

// Count returns the number of responding addresses.
func (r Result) Count() int { return len(r.Addresses) }

// Has reports whether addr answered.
func (r Result) Has(addr uint16) bool {
	for _, a := range r.Addresses {
		if a == addr {
			return true
		}
	}
	return false
}

// Probe attempts a zero-length transaction. Any error means absent.
func Probe(bus drivers.I2C, addr uint16) bool {
	return bus.Tx(addr, nil, nil) == nil
}

// Scan probes FirstAddress..LastAddress in order. A failing probe never
// aborts the scan.
func Scan(bus drivers.I2C) Result {
	return ScanRange(bus, FirstAddress, LastAddress, nil)
}

// ScanRange probes [first, last] and calls found (if non-nil) for each
// responding address as it is discovered.
func ScanRange(bus drivers.I2C, first, last uint16, found func(addr uint16)) Result {
	var r Result
	for a := first; a <= last; a++ {
		if !Probe(bus, a) {
			continue
		}
		r.Addresses = append(r.Addresses, a)
		if found != nil {
			found(a)
		}
	}
	return r
}
