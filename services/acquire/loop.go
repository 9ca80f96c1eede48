// Package acquire runs the sensor to attribute update loop: it samples the
// sensors on a fixed interval while a client is connected, encodes the
// readings and publishes them through the transport.
package acquire

import (
	"context"
	"time"

	"tinygo.org/x/drivers"

	"nanosense-go/bus"
	"nanosense-go/drivers/i2cscan"
	"nanosense-go/errcode"
	"nanosense-go/protocol"
	"nanosense-go/types"
	"nanosense-go/x/timex"
)

// State is the loop's connection state.
type State uint8

const (
	StateIdle      State = iota // advertising, waiting for a client
	StateConnected              // a client is connected
	StateHalted                 // init failed; terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateHalted:
		return "halted"
	}
	return "unknown"
}

const (
	defaultUpdateInterval = time.Second
	defaultPollInterval   = 5 * time.Millisecond
)

// Options configures a Loop.
type Options struct {
	Sensors   Sensors
	Transport Transport

	// Clock defaults to a monotonic millisecond counter.
	Clock timex.Clock
	// Conn receives diagnostics. Optional.
	Conn *bus.Connection

	UpdateInterval time.Duration
	PollInterval   time.Duration

	// ScanBus, when set, is swept for devices before sensor init.
	ScanBus  drivers.I2C
	ScanName string
}

// Loop owns the transport, the publisher, the update timer and the peer.
type Loop struct {
	sensors Sensors
	t       Transport
	pub     *Publisher
	clock   timex.Clock
	conn    *bus.Connection

	pollEvery time.Duration
	timer     timer

	scanBus  drivers.I2C
	scanName string

	state   State
	started bool
	peer    string
	halt    *HaltError
}

func New(o Options) *Loop {
	if o.Clock == nil {
		o.Clock = timex.NewMonotonic()
	}
	if o.UpdateInterval <= 0 {
		o.UpdateInterval = defaultUpdateInterval
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.ScanName == "" {
		o.ScanName = "i2c"
	}
	l := &Loop{
		sensors:   o.Sensors,
		t:         o.Transport,
		clock:     o.Clock,
		conn:      o.Conn,
		pollEvery: o.PollInterval,
		timer:     timer{interval: timex.Ms(o.UpdateInterval)},
		scanBus:   o.ScanBus,
		scanName:  o.ScanName,
	}
	if o.Transport != nil {
		l.pub = NewPublisher(o.Transport)
	}
	return l
}

func (l *Loop) State() State { return l.state }

// Peer returns the connected client's address, or "" when idle.
func (l *Loop) Peer() string { return l.peer }

// Err returns the halt error, or nil.
func (l *Loop) Err() error {
	if l.halt == nil {
		return nil
	}
	return l.halt
}

// Init performs the startup sequence: bus discovery (diagnostic only),
// sensor init, then transport init. On failure the loop enters StateHalted
// and the returned error is a *HaltError.
func (l *Loop) Init() error {
	if l.started {
		return l.Err()
	}
	l.started = true

	if l.scanBus != nil {
		l.scan()
	}

	if name, err := l.sensors.configure(); err != nil {
		l.report(name, err)
		return l.stop(errcode.SensorInit, name, err)
	}
	l.report("sensors", nil)
	if id, ok := l.sensors.External.(identifier); ok {
		// Reported, never fatal.
		l.report("external", id.Identify())
	}

	if l.t == nil {
		return l.stop(errcode.TransportInit, "transport", errNoTransport)
	}
	if err := l.t.Start(); err != nil {
		l.report("transport", err)
		return l.stop(errcode.TransportInit, "transport", err)
	}
	l.report("transport", nil)

	l.setState(StateIdle, "")
	return nil
}

func (l *Loop) stop(c errcode.Code, op string, err error) error {
	l.halt = &HaltError{C: c, Op: op, Err: err}
	l.setState(StateHalted, "")
	return l.halt
}

// Step runs one cooperative iteration. The transport is polled on every
// step regardless of state; sampling happens only while connected and when
// the update interval has elapsed. A sampling step blocks for the sensor
// reads before returning.
func (l *Loop) Step() {
	if l.state == StateHalted || !l.started {
		return
	}

	ev, ok := l.t.Poll()
	if ok {
		switch ev.Kind {
		case EventConnect:
			l.setState(StateConnected, ev.Peer)
			l.timer.arm(l.clock.Millis())
		case EventDisconnect:
			l.setState(StateIdle, "")
			return
		}
	}

	if l.state != StateConnected {
		return
	}
	if !l.timer.due(l.clock.Millis()) {
		return
	}
	l.update()
}

// update samples, encodes and publishes one frame.
func (l *Loop) update() {
	s, faults := l.sensors.sample()
	f := protocol.Encode(s)
	err := l.pub.Publish(&f)

	if l.conn == nil {
		return
	}
	rep := types.SampleReport{
		Sample: s,
		Centi:  [3]int16{f.Temperature, f.Humidity, f.External},
		TSms:   timex.NowMs(),

		AmbientErr:  string(faults.ambient),
		ExternalErr: string(faults.external),
		AccelErr:    string(faults.accel),
	}
	if err != nil {
		rep.WriteErr = err.Error()
	}
	l.conn.Publish(l.conn.NewMessage(TopicSample, rep, false))
}

// Run initialises the loop if needed and then steps it every PollInterval
// until ctx is done. A halted loop returns its *HaltError immediately.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Init(); err != nil {
		return err
	}
	tick := time.NewTicker(l.pollEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			l.Step()
		}
	}
}

func (l *Loop) setState(s State, peer string) {
	l.state = s
	l.peer = peer
	if l.conn == nil {
		return
	}
	ls := types.LoopState{Level: s.String(), Peer: peer, TSms: timex.NowMs()}
	if s == StateHalted && l.halt != nil {
		ls.Code = string(l.halt.C)
	}
	l.conn.Publish(l.conn.NewMessage(TopicState, ls, true))
}

func (l *Loop) report(component string, err error) {
	if l.conn == nil {
		return
	}
	r := types.InitReport{Component: component, OK: err == nil}
	if err != nil {
		r.Error = err.Error()
	}
	l.conn.Publish(l.conn.NewMessage(TopicInit(component), r, true))
}

func (l *Loop) scan() {
	res := i2cscan.Scan(l.scanBus)
	if l.conn == nil {
		return
	}
	rep := types.ScanReport{
		Bus:       l.scanName,
		Addresses: res.Addresses,
		TSms:      timex.NowMs(),
	}
	if res.Count() == 0 {
		rep.Code = string(errcode.NoDevices)
	}
	l.conn.Publish(l.conn.NewMessage(TopicScan, rep, true))
}
