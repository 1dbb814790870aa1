package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"pandemica/internal/sim"
)

func appendFrame(b []byte, f sim.Frame) []byte {
	b = appendVarint(b, 1, uint64(f.Step))
	b = appendDouble(b, 2, f.Width)
	b = appendDouble(b, 3, f.Height)
	var scratch []byte
	for _, a := range f.Agents {
		scratch = appendAgent(scratch[:0], a)
		b = appendMessage(b, 4, scratch)
	}
	for _, l := range f.Locations {
		scratch = appendLocation(scratch[:0], l)
		b = appendMessage(b, 5, scratch)
	}
	b = appendMessage(b, 6, appendCounts(scratch[:0], f.Counts))
	b = appendDouble(b, 7, f.FreeWidth)
	b = appendDouble(b, 8, f.FreeHeight)
	return b
}

func appendAgent(b []byte, a sim.AgentView) []byte {
	b = appendVarint(b, 1, uint64(a.ID))
	b = appendDouble(b, 2, a.X)
	b = appendDouble(b, 3, a.Y)
	b = appendVarint(b, 4, uint64(a.State))
	b = appendVarint(b, 5, protowire.EncodeZigZag(int64(a.Location)))
	b = appendVarint(b, 6, protowire.EncodeBool(a.Quarantined))
	b = appendVarint(b, 7, protowire.EncodeBool(a.Travelling))
	return b
}

func appendLocation(b []byte, l sim.Location) []byte {
	b = appendDouble(b, 1, l.X)
	b = appendDouble(b, 2, l.Y)
	b = appendDouble(b, 3, l.Size)
	b = appendVarint(b, 4, uint64(l.Kind))
	return b
}

func appendCounts(b []byte, c sim.Counts) []byte {
	for i, s := range sim.States() {
		b = appendVarint(b, protowire.Number(i+1), uint64(c.Get(s)))
	}
	return b
}

func decodeFrame(b []byte) (sim.Frame, error) {
	var f sim.Frame
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v uint64
			n := consumeVarint(num, typ, b, &v)
			f.Step = int(v)
			return n, nil
		case 2:
			return consumeDouble(num, typ, b, &f.Width), nil
		case 3:
			return consumeDouble(num, typ, b, &f.Height), nil
		case 7:
			return consumeDouble(num, typ, b, &f.FreeWidth), nil
		case 8:
			return consumeDouble(num, typ, b, &f.FreeHeight), nil
		case 4, 5, 6:
			if typ != protowire.BytesType {
				break
			}
			body, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			var err error
			switch num {
			case 4:
				var a sim.AgentView
				a, err = decodeAgent(body)
				f.Agents = append(f.Agents, a)
			case 5:
				var l sim.Location
				l, err = decodeLocation(body)
				f.Locations = append(f.Locations, l)
			case 6:
				f.Counts, err = decodeCounts(body)
			}
			return n, err
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return f, err
}

func decodeAgent(b []byte) (sim.AgentView, error) {
	a := sim.AgentView{Location: sim.NoLocation}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var v uint64
		switch num {
		case 2:
			return consumeDouble(num, typ, b, &a.X), nil
		case 3:
			return consumeDouble(num, typ, b, &a.Y), nil
		case 1, 4, 5, 6, 7:
			n := consumeVarint(num, typ, b, &v)
			if n < 0 || typ != protowire.VarintType {
				return n, nil
			}
			switch num {
			case 1:
				a.ID = int(v)
			case 4:
				if v > uint64(sim.Deceased) {
					return 0, fmt.Errorf("unknown state %d", v)
				}
				a.State = sim.State(v)
			case 5:
				a.Location = sim.LocationRef(protowire.DecodeZigZag(v))
			case 6:
				a.Quarantined = protowire.DecodeBool(v)
			case 7:
				a.Travelling = protowire.DecodeBool(v)
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return a, err
}

func decodeLocation(b []byte) (sim.Location, error) {
	var l sim.Location
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeDouble(num, typ, b, &l.X), nil
		case 2:
			return consumeDouble(num, typ, b, &l.Y), nil
		case 3:
			return consumeDouble(num, typ, b, &l.Size), nil
		case 4:
			var v uint64
			n := consumeVarint(num, typ, b, &v)
			l.Kind = sim.LocationKind(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return l, err
}

func decodeCounts(b []byte) (sim.Counts, error) {
	var c sim.Counts
	states := sim.States()
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num < 1 || int(num) > len(states) {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		var v uint64
		n := consumeVarint(num, typ, b, &v)
		c[states[num-1]] = int(v)
		return n, nil
	})
	return c, err
}
