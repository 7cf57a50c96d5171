package midi

import "go-smfstream/midifile"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Event is a decoded note or controller message, flattened for display
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8 // 0-15
	Note     uint8 // key, or controller number for CC
	Velocity uint8 // velocity, or controller value for CC
}

// FromChannel flattens a decoded channel message. Only note and controller
// messages convert; a note-on with velocity 0 is reported as a note-off.
func FromChannel(c midifile.Channel) (Event, bool) {
	e := Event{Channel: c.Channel, Note: c.Param1, Velocity: c.Param2}
	switch c.Op {
	case midifile.NoteOn:
		e.Type = NoteOn
		if c.Param2 == 0 {
			e.Type = NoteOff
		}
	case midifile.NoteOff:
		e.Type = NoteOff
	case midifile.ControlChange:
		e.Type = CC
	default:
		return Event{}, false
	}
	return e, true
}
