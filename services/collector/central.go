package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tinygo.org/x/bluetooth"

	"nanosense-go/protocol"
)

// ErrNotFound is returned when no peripheral with the configured name
// advertised within the scan timeout.
var ErrNotFound = errors.New("collector: device not found")

const connectSettle = 2 * time.Second

// Source yields decoded readings from a node.
type Source interface {
	Read(ctx context.Context, r *protocol.Reading) error
	Close() error
}

// BLESource reads the node's attributes as a GATT central.
type BLESource struct {
	device bluetooth.Device
	chars  [protocol.NumAttributes]*bluetooth.DeviceCharacteristic
	buf    [protocol.AccelerationLen]byte
	logger *slog.Logger
}

// DialBLE scans for cfg.DeviceName, connects and discovers the sensor
// service. The external temperature characteristic is optional so older
// firmware without it can still be collected.
func DialBLE(ctx context.Context, cfg Config, logger *slog.Logger) (*BLESource, error) {
	adapter := bluetooth.NewAdapter(cfg.Adapter)
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble enable (%s): %w", cfg.Adapter, err)
	}

	logger.Info("scanning for device", "name", cfg.DeviceName, "timeout", cfg.ScanTimeout)
	addr, err := scanFor(ctx, adapter, cfg.DeviceName, cfg.ScanTimeout)
	if err != nil {
		return nil, err
	}
	logger.Info("device found", "address", addr.String())

	dev, err := adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("ble connect: %w", err)
	}
	s := &BLESource{device: dev, logger: logger}
	if err := s.discover(); err != nil {
		_ = dev.Disconnect()
		return nil, err
	}

	select {
	case <-ctx.Done():
		_ = dev.Disconnect()
		return nil, ctx.Err()
	case <-time.After(connectSettle):
	}
	logger.Info("connected", "address", addr.String())
	return s, nil
}

func scanFor(ctx context.Context, adapter *bluetooth.Adapter, name string, timeout time.Duration) (bluetooth.Address, error) {
	var (
		found bluetooth.Address
		ok    bool
	)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(timeout):
		case <-done:
			return
		}
		_ = adapter.StopScan()
	}()

	err := adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
		if ok || r.LocalName() != name {
			return
		}
		found, ok = r.Address, true
		_ = a.StopScan()
	})
	if ctx.Err() != nil {
		return found, ctx.Err()
	}
	if err != nil {
		return found, fmt.Errorf("ble scan: %w", err)
	}
	if !ok {
		return found, ErrNotFound
	}
	return found, nil
}

func (s *BLESource) discover() error {
	svcs, err := s.device.DiscoverServices([]bluetooth.UUID{bluetooth.New16BitUUID(protocol.ServiceUUID)})
	if err != nil {
		return fmt.Errorf("discover services: %w", err)
	}
	if len(svcs) == 0 {
		return fmt.Errorf("discover services: %04x not present", protocol.ServiceUUID)
	}
	chars, err := svcs[0].DiscoverCharacteristics(nil)
	if err != nil {
		return fmt.Errorf("discover characteristics: %w", err)
	}
	for i := range chars {
		for _, a := range protocol.Attributes {
			if chars[i].UUID() == bluetooth.New16BitUUID(a.UUID16()) {
				s.chars[a] = &chars[i]
			}
		}
	}
	for _, a := range protocol.Attributes {
		if s.chars[a] == nil && a != protocol.AttrExternalTemperature {
			return fmt.Errorf("discover characteristics: %v missing", a)
		}
	}
	if s.chars[protocol.AttrExternalTemperature] == nil {
		s.logger.Warn("external temperature characteristic missing; reporting 0")
	}
	return nil
}

// Read reads every present attribute once and decodes it into r.
func (s *BLESource) Read(ctx context.Context, r *protocol.Reading) error {
	for _, a := range protocol.Attributes {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := s.chars[a]
		if c == nil {
			continue
		}
		n, err := c.Read(s.buf[:])
		if err != nil {
			return fmt.Errorf("read %v: %w", a, err)
		}
		if err := r.Decode(a, s.buf[:n]); err != nil {
			return fmt.Errorf("decode %v: %w", a, err)
		}
	}
	return nil
}

func (s *BLESource) Close() error { return s.device.Disconnect() }
