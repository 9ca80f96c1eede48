// Package ble exposes the sensor attributes as a GATT peripheral.
//
// Service 0x181A carries four read+notify characteristics (see protocol).
// Connection callbacks from the stack only enqueue events; the acquisition
// loop drains them through Poll.
package ble

import (
	"fmt"

	"tinygo.org/x/bluetooth"

	"nanosense-go/protocol"
	"nanosense-go/services/acquire"
)

const eventQueueLen = 8

var _ acquire.Transport = (*Peripheral)(nil)

// valueWriter is the part of bluetooth.Characteristic the peripheral uses.
type valueWriter interface {
	Write(p []byte) (n int, err error)
}

// Peripheral implements acquire.Transport over tinygo.org/x/bluetooth.
type Peripheral struct {
	adapter *bluetooth.Adapter
	name    string
	adv     *bluetooth.Advertisement

	chars   [protocol.NumAttributes]bluetooth.Characteristic
	handles [protocol.NumAttributes]valueWriter

	events    chan acquire.Event
	advertise func() error
}

// New returns a peripheral on adapter advertising under name.
func New(adapter *bluetooth.Adapter, name string) *Peripheral {
	if name == "" {
		name = protocol.LocalName
	}
	p := newPeripheral(name)
	p.adapter = adapter
	for i := range p.chars {
		p.handles[i] = &p.chars[i]
	}
	p.advertise = p.startAdvertising
	return p
}

func newPeripheral(name string) *Peripheral {
	return &Peripheral{
		name:   name,
		events: make(chan acquire.Event, eventQueueLen),
	}
}

// Start enables the adapter, registers the service and begins advertising.
func (p *Peripheral) Start() error {
	if err := p.adapter.Enable(); err != nil {
		return fmt.Errorf("ble enable: %w", err)
	}
	p.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		p.connected(device.Address.String(), connected)
	})

	svc := bluetooth.New16BitUUID(protocol.ServiceUUID)
	cfgs := make([]bluetooth.CharacteristicConfig, 0, protocol.NumAttributes)
	for _, a := range protocol.Attributes {
		cfgs = append(cfgs, bluetooth.CharacteristicConfig{
			Handle: &p.chars[a],
			UUID:   bluetooth.New16BitUUID(a.UUID16()),
			Value:  make([]byte, a.Len()),
			Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
		})
	}
	if err := p.adapter.AddService(&bluetooth.Service{UUID: svc, Characteristics: cfgs}); err != nil {
		return fmt.Errorf("ble add service: %w", err)
	}

	p.adv = p.adapter.DefaultAdvertisement()
	if err := p.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    p.name,
		ServiceUUIDs: []bluetooth.UUID{svc},
	}); err != nil {
		return fmt.Errorf("ble advertisement: %w", err)
	}
	return p.advertise()
}

func (p *Peripheral) startAdvertising() error {
	if err := p.adv.Start(); err != nil {
		return fmt.Errorf("ble advertise: %w", err)
	}
	return nil
}

// connected runs in the stack's callback context. It never blocks: when the
// queue is full the oldest event is dropped.
func (p *Peripheral) connected(peer string, up bool) {
	ev := acquire.Event{Kind: acquire.EventDisconnect, Peer: peer}
	if up {
		ev.Kind = acquire.EventConnect
	}
	for {
		select {
		case p.events <- ev:
			return
		default:
		}
		select {
		case <-p.events:
		default:
		}
	}
}

// Poll returns at most one queued connection event. After a disconnect the
// peripheral advertises again.
func (p *Peripheral) Poll() (acquire.Event, bool) {
	select {
	case ev := <-p.events:
		if ev.Kind == acquire.EventDisconnect && p.advertise != nil {
			if err := p.advertise(); err != nil {
				println("[ble] re-advertise failed:", err.Error())
			}
		}
		return ev, true
	default:
		return acquire.Event{}, false
	}
}

// WriteAttribute stores p as the attribute value and notifies the client.
func (p *Peripheral) WriteAttribute(a protocol.Attribute, b []byte) error {
	if int(a) >= len(p.handles) || p.handles[a] == nil {
		return fmt.Errorf("ble: no characteristic for %v", a)
	}
	if _, err := p.handles[a].Write(b); err != nil {
		return fmt.Errorf("ble write %v: %w", a, err)
	}
	return nil
}
