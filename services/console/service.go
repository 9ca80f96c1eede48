// Package console prints the node's diagnostics from the local bus.
package console

import (
	"context"
	"io"
	"time"

	"nanosense-go/bus"
	"nanosense-go/services/acquire"
	"nanosense-go/services/config"
	"nanosense-go/types"
	"nanosense-go/x/conv"
)

// Service writes one line per diagnostic message.
type Service struct {
	out       io.Writer
	heartbeat time.Duration

	buf   []byte
	level string
	peer  string
}

// New returns a console writing to out, or to the build's default output
// when out is nil. A zero heartbeat disables the periodic status line.
func New(out io.Writer, heartbeat time.Duration) *Service {
	if out == nil {
		out = defaultOutput()
	}
	return &Service{out: out, heartbeat: heartbeat, buf: make([]byte, 0, 128)}
}

// Start runs the console until ctx is done.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	sense := conn.Subscribe(bus.T("sense", bus.MultiWild))
	cfg := conn.Subscribe(config.Topic(bus.MultiWild))
	go s.serviceLoop(ctx, conn, sense, cfg)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, subs ...*bus.Subscription) {
	defer func() {
		for _, sub := range subs {
			conn.Unsubscribe(sub)
		}
	}()

	var tick <-chan time.Time
	if s.heartbeat > 0 {
		t := time.NewTicker(s.heartbeat)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			s.writeLine(append(s.buf[:0], "[console] stopping"...))
			return
		case <-tick:
			s.writeLine(s.appendHeartbeat(s.buf[:0]))
		case m, ok := <-subs[0].Channel():
			if !ok {
				return
			}
			s.handle(m)
		case m, ok := <-subs[1].Channel():
			if !ok {
				return
			}
			s.handle(m)
		}
	}
}

func (s *Service) handle(m *bus.Message) {
	if line := s.Format(s.buf[:0], m); len(line) > 0 {
		s.writeLine(line)
	}
}

func (s *Service) writeLine(line []byte) {
	line = append(line, '\n')
	_, _ = s.out.Write(line)
	s.buf = line[:0]
}

// Format appends the console line for m. Unknown payloads produce nothing.
func (s *Service) Format(buf []byte, m *bus.Message) []byte {
	switch p := m.Payload.(type) {
	case types.LoopState:
		return s.appendState(buf, p)
	case types.SampleReport:
		return appendSample(buf, p)
	case types.ScanReport:
		return appendScan(buf, p)
	case types.InitReport:
		return appendInit(buf, p)
	case config.Config:
		return appendConfig(buf, p)
	}
	return buf
}

func (s *Service) appendState(buf []byte, st types.LoopState) []byte {
	prevLevel, prevPeer := s.level, s.peer
	s.level, s.peer = st.Level, st.Peer

	switch st.Level {
	case acquire.StateConnected.String():
		buf = append(buf, "[ble] connected to central: "...)
		return append(buf, peerOrUnknown(st.Peer)...)
	case acquire.StateIdle.String():
		if prevLevel == acquire.StateConnected.String() {
			buf = append(buf, "[ble] disconnected from central: "...)
			return append(buf, peerOrUnknown(prevPeer)...)
		}
		return append(buf, "[ble] advertising started"...)
	case acquire.StateHalted.String():
		buf = append(buf, "[halt] "...)
		return append(buf, st.Code...)
	}
	return buf
}

func peerOrUnknown(p string) string {
	if p == "" {
		return "unknown"
	}
	return p
}

func (s *Service) appendHeartbeat(buf []byte) []byte {
	buf = append(buf, "[hb] "...)
	if s.level == "" {
		return append(buf, "starting"...)
	}
	return append(buf, s.level...)
}

func appendSample(buf []byte, r types.SampleReport) []byte {
	buf = append(buf, "[sample] temperature: "...)
	buf = conv.AppendFloat2(buf, r.Sample.AmbientC)
	buf = append(buf, " C humidity: "...)
	buf = conv.AppendFloat2(buf, r.Sample.HumidityPct)
	buf = append(buf, " % external: "...)
	buf = conv.AppendFloat2(buf, r.Sample.External.Float())
	buf = append(buf, " C"...)
	if r.Sample.AccelOK {
		buf = append(buf, " accel x: "...)
		buf = conv.AppendFloat2(buf, r.Sample.Accel.X)
		buf = append(buf, " y: "...)
		buf = conv.AppendFloat2(buf, r.Sample.Accel.Y)
		buf = append(buf, " z: "...)
		buf = conv.AppendFloat2(buf, r.Sample.Accel.Z)
	}
	if r.WriteErr != "" {
		buf = append(buf, " write error: "...)
		buf = append(buf, r.WriteErr...)
	}
	return buf
}

func appendScan(buf []byte, r types.ScanReport) []byte {
	buf = append(buf, "[scan] "...)
	buf = append(buf, r.Bus...)
	if len(r.Addresses) == 0 {
		return append(buf, ": no devices found"...)
	}
	buf = append(buf, ": "...)
	buf = conv.AppendInt(buf, int64(len(r.Addresses)))
	buf = append(buf, " device(s):"...)
	for _, a := range r.Addresses {
		buf = append(buf, ' ')
		buf = conv.AppendHex8(buf, uint8(a))
	}
	return buf
}

func appendInit(buf []byte, r types.InitReport) []byte {
	buf = append(buf, "[init] "...)
	buf = append(buf, r.Component...)
	if r.OK {
		return append(buf, " ok"...)
	}
	buf = append(buf, " failed: "...)
	return append(buf, r.Error...)
}

func appendConfig(buf []byte, c config.Config) []byte {
	buf = append(buf, "[config] name="...)
	buf = append(buf, c.LocalName...)
	buf = append(buf, " interval="...)
	buf = conv.AppendInt(buf, c.UpdateInterval.Milliseconds())
	buf = append(buf, "ms bus="...)
	buf = conv.AppendInt(buf, int64(c.BusHz))
	return append(buf, "Hz"...)
}
