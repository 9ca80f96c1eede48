package acquire

import (
	"errors"

	"nanosense-go/errcode"
	"nanosense-go/protocol"
)

// AttributeWriter sets the value of one exposed attribute and notifies the
// connected client. Implementations copy p before returning.
type AttributeWriter interface {
	WriteAttribute(a protocol.Attribute, p []byte) error
}

// Publisher writes encoded frames to the four attributes.
type Publisher struct {
	w   AttributeWriter
	buf [protocol.AccelerationLen]byte
}

func NewPublisher(w AttributeWriter) *Publisher { return &Publisher{w: w} }

// Publish writes temperature, humidity and external temperature, then
// acceleration when the frame carries it. Every write is attempted; failures
// are joined and returned with the publish_failed code. Nothing is rolled back.
func (p *Publisher) Publish(f *protocol.Frame) error {
	var errs []error
	for _, a := range protocol.Attributes {
		if a == protocol.AttrAcceleration && !f.HasAccel {
			continue
		}
		if err := p.w.WriteAttribute(a, f.Payload(a, p.buf[:])); err != nil {
			errs = append(errs, &errcode.E{C: errcode.PublishFailed, Op: a.String(), Err: err})
		}
	}
	return errors.Join(errs...)
}
