package midi

import (
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-smfstream/midifile"
)

// ToMessage converts a decoded event into a wire message. Only channel
// messages and complete F0 system exclusive events have one.
func ToMessage(ev midifile.Event) (gomidi.Message, bool) {
	switch p := ev.Payload.(type) {
	case midifile.Channel:
		return channelMessage(p), true
	case midifile.SysEx:
		if ev.Kind != midifile.KindSysExF0 {
			return nil, false
		}
		msg, err := SysExMessage(p)
		if err != nil {
			return nil, false
		}
		return msg, true
	}
	return nil, false
}

func channelMessage(c midifile.Channel) gomidi.Message {
	switch c.Op {
	case midifile.NoteOff:
		return gomidi.NoteOffVelocity(c.Channel, c.Param1, c.Param2)
	case midifile.NoteOn:
		return gomidi.NoteOn(c.Channel, c.Param1, c.Param2)
	case midifile.NoteAftertouch:
		return gomidi.PolyAfterTouch(c.Channel, c.Param1, c.Param2)
	case midifile.ControlChange:
		return gomidi.ControlChange(c.Channel, c.Param1, c.Param2)
	case midifile.ProgramChange:
		return gomidi.ProgramChange(c.Channel, c.Param1)
	case midifile.ChannelAftertouch:
		return gomidi.AfterTouch(c.Channel, c.Param1)
	default:
		return gomidi.Pitchbend(c.Channel, c.PitchBendValue())
	}
}

// SysExMessage rebuilds the F0 ... F7 wire form of a file sysex event. The
// file stores the data after F0, usually ending in F7. Truncated payloads
// are refused.
func SysExMessage(s midifile.SysEx) (gomidi.Message, error) {
	if s.Truncated() {
		return nil, errors.Errorf("sysex truncated to %d of %d bytes; raise the buffer capacity", len(s.Data), s.Declared)
	}
	data := s.Data
	if n := len(data); n > 0 && data[n-1] == 0xF7 {
		data = data[:n-1]
	}
	return gomidi.SysEx(data), nil
}
