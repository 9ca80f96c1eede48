// Package protocol defines the NanoSense GATT attribute table and the
// fixed-point wire encoding of a sample.
//
// Wire format (all little-endian, compatible with existing client decoders):
//
//	2A6E  2 bytes  int16  ambient temperature ×100
//	2A6F  2 bytes  int16  relative humidity ×100
//	A001 12 bytes  3×float32 acceleration x,y,z in g, unscaled
//	A002  2 bytes  int16  external temperature ×100, 0 when unavailable
//
// The ×100 conversion truncates toward zero. An unavailable external reading
// and a genuine 0.00 °C reading share the value 0 on the wire.
package protocol

// LocalName is the advertised device name.
const LocalName = "NanoSense"

// 16-bit UUIDs.
const (
	ServiceUUID             uint16 = 0x181A // Environmental Sensing
	TemperatureUUID         uint16 = 0x2A6E
	HumidityUUID            uint16 = 0x2A6F
	AccelerationUUID        uint16 = 0xA001
	ExternalTemperatureUUID uint16 = 0xA002
)

// Attribute identifies one characteristic of the service.
type Attribute uint8

const (
	AttrTemperature Attribute = iota
	AttrHumidity
	AttrAcceleration
	AttrExternalTemperature

	NumAttributes = 4
)

// Payload widths.
const (
	ScalarLen       = 2
	AccelerationLen = 12
)

// Attributes lists every attribute in publish order.
var Attributes = [NumAttributes]Attribute{
	AttrTemperature,
	AttrHumidity,
	AttrExternalTemperature,
	AttrAcceleration,
}

// UUID16 returns the 16-bit UUID of a.
func (a Attribute) UUID16() uint16 {
	switch a {
	case AttrTemperature:
		return TemperatureUUID
	case AttrHumidity:
		return HumidityUUID
	case AttrAcceleration:
		return AccelerationUUID
	case AttrExternalTemperature:
		return ExternalTemperatureUUID
	}
	return 0
}

// Len returns the fixed payload width of a.
func (a Attribute) Len() int {
	if a == AttrAcceleration {
		return AccelerationLen
	}
	return ScalarLen
}

func (a Attribute) String() string {
	switch a {
	case AttrTemperature:
		return "temperature"
	case AttrHumidity:
		return "humidity"
	case AttrAcceleration:
		return "acceleration"
	case AttrExternalTemperature:
		return "external_temperature"
	}
	return "unknown"
}

// AttributeByUUID maps a 16-bit UUID back to its attribute.
func AttributeByUUID(u uint16) (Attribute, bool) {
	for _, a := range Attributes {
		if a.UUID16() == u {
			return a, true
		}
	}
	return 0, false
}
