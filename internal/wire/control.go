package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"pandemica/internal/sim"
)

func appendControl(b []byte, c sim.ControlSettings) []byte {
	b = appendDouble(b, 1, c.TransmissionModifier)
	b = appendDouble(b, 2, c.SpeedModifier)
	b = appendVarint(b, 3, protowire.EncodeBool(c.LockdownEnabled))
	b = appendVarint(b, 4, protowire.EncodeBool(c.Paused))
	return b
}

// decodeControl applies the fields present in b on top of base.
func decodeControl(b []byte, base sim.ControlSettings) (sim.ControlSettings, error) {
	c := base
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeDouble(num, typ, b, &c.TransmissionModifier), nil
		case 2:
			return consumeDouble(num, typ, b, &c.SpeedModifier), nil
		case 3, 4:
			var v uint64
			n := consumeVarint(num, typ, b, &v)
			if n < 0 || typ != protowire.VarintType {
				return n, nil
			}
			if num == 3 {
				c.LockdownEnabled = protowire.DecodeBool(v)
			} else {
				c.Paused = protowire.DecodeBool(v)
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return c, err
}
