package tfmini

import (
	rutils "go.viam.com/tfmini/utils"
)

// FrameLength is the size of the measurement frame returned by a distance query.
const FrameLength = 7

// Frame is the raw measurement frame:
//
//	byte 0     trigger flag
//	byte 1     reserved
//	bytes 2-3  distance, little endian
//	bytes 4-5  signal strength, little endian
//	byte 6     mode
type Frame [FrameLength]byte

// Measurement is a decoded Frame. Distance is in whatever unit was last configured on the device;
// the frame does not say which.
type Measurement struct {
	TriggerFlag uint8
	Distance    uint16
	Strength    uint16
	Mode        uint8
}

// Decode parses a frame. It has no side effects.
func Decode(f Frame) Measurement {
	return Measurement{
		TriggerFlag: f[0],
		Distance:    rutils.Uint16FromBytesLE(f[2:4]),
		Strength:    rutils.Uint16FromBytesLE(f[4:6]),
		Mode:        f[6],
	}
}
