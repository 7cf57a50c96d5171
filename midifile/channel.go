package midifile

import "fmt"

// ChannelOp is the upper nibble of a channel voice status byte.
type ChannelOp uint8

const (
	NoteOff           ChannelOp = 0x8
	NoteOn            ChannelOp = 0x9
	NoteAftertouch    ChannelOp = 0xA
	ControlChange     ChannelOp = 0xB
	ProgramChange     ChannelOp = 0xC
	ChannelAftertouch ChannelOp = 0xD
	PitchBend         ChannelOp = 0xE
)

func (op ChannelOp) String() string {
	switch op {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case NoteAftertouch:
		return "NoteAftertouch"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelAftertouch:
		return "ChannelAftertouch"
	case PitchBend:
		return "PitchBend"
	}
	return fmt.Sprintf("ChannelOp(%#x)", uint8(op))
}

// Params is the number of data bytes that follow the status byte.
func (op ChannelOp) Params() int {
	if op == ProgramChange || op == ChannelAftertouch {
		return 1
	}
	return 2
}

// Channel is the payload of a channel voice message. Param2 is 0 for the
// one-parameter messages.
type Channel struct {
	Op      ChannelOp
	Channel uint8 // 0..15
	Param1  uint8
	Param2  uint8
}

// Status rebuilds the status byte the message was sent with.
func (c Channel) Status() byte {
	return byte(c.Op)<<4 | c.Channel&0x0F
}

// PitchBendValue combines the two 7-bit parameters into a signed bend
// centred on zero (-8192..8191). Only meaningful for PitchBend.
func (c Channel) PitchBendValue() int16 {
	return int16(uint16(c.Param2&0x7F)<<7|uint16(c.Param1&0x7F)) - 8192
}

func (c Channel) String() string {
	if c.Op.Params() == 1 {
		return fmt.Sprintf("%s ch=%d %d", c.Op, c.Channel, c.Param1)
	}
	return fmt.Sprintf("%s ch=%d %d %d", c.Op, c.Channel, c.Param1, c.Param2)
}
