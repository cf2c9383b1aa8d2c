package tfmini

import (
	"testing"

	"go.viam.com/test"
)

func TestDecode(t *testing.T) {
	frame := Frame{0x00, 0xFF, 0x10, 0x02, 0x05, 0x00, 0x00}
	m := Decode(frame)
	test.That(t, m.Distance, test.ShouldEqual, uint16(528))
	test.That(t, m.Strength, test.ShouldEqual, uint16(5))
	test.That(t, m.TriggerFlag, test.ShouldEqual, uint8(0))
	test.That(t, m.Mode, test.ShouldEqual, uint8(0))

	t.Run("same frame decodes the same and is left untouched", func(t *testing.T) {
		before := frame
		test.That(t, Decode(frame), test.ShouldResemble, m)
		test.That(t, frame, test.ShouldResemble, before)
	})

	t.Run("reserved byte is ignored", func(t *testing.T) {
		other := frame
		other[1] = 0x00
		test.That(t, Decode(other), test.ShouldResemble, m)
	})

	t.Run("all fields", func(t *testing.T) {
		m := Decode(Frame{0x01, 0x00, 0xFF, 0xFF, 0x34, 0x12, 0x07})
		test.That(t, m, test.ShouldResemble, Measurement{
			TriggerFlag: 0x01,
			Distance:    0xFFFF,
			Strength:    0x1234,
			Mode:        0x07,
		})
	})
}
