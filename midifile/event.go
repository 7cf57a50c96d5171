package midifile

import (
	"fmt"
	"strconv"
)

// Kind identifies the shape of the most recently decoded event.
type Kind uint8

const (
	KindUnknown        Kind = iota // decode error, or nothing read yet
	KindNoOp                       // unrecognised meta event, payload discarded
	KindEnd                        // end of the track's data (not the meta event)
	KindSysExF0                    // F0 system exclusive
	KindSysExEscape                // F7 escaped/continuation system exclusive
	KindSequenceNumber             // meta 0x00
	KindText                       // meta 0x01
	KindCopyright                  // meta 0x02
	KindName                       // meta 0x03, sequence or track name
	KindInstrument                 // meta 0x04
	KindLyric                      // meta 0x05
	KindMarker                     // meta 0x06
	KindCuePoint                   // meta 0x07
	KindChannelPrefix              // meta 0x20
	KindEndOfTrack                 // meta 0x2F
	KindTempo                      // meta 0x51
	KindSMPTEOffset                // meta 0x54
	KindTimeSignature              // meta 0x58
	KindKeySignature               // meta 0x59
	KindChannel                    // channel voice message
)

var kindNames = [...]string{
	KindUnknown:        "Unknown",
	KindNoOp:           "NoOp",
	KindEnd:            "End",
	KindSysExF0:        "SysEx",
	KindSysExEscape:    "SysExEscape",
	KindSequenceNumber: "SequenceNumber",
	KindText:           "Text",
	KindCopyright:      "Copyright",
	KindName:           "Name",
	KindInstrument:     "Instrument",
	KindLyric:          "Lyric",
	KindMarker:         "Marker",
	KindCuePoint:       "CuePoint",
	KindChannelPrefix:  "ChannelPrefix",
	KindEndOfTrack:     "EndOfTrack",
	KindTempo:          "Tempo",
	KindSMPTEOffset:    "SMPTEOffset",
	KindTimeSignature:  "TimeSignature",
	KindKeySignature:   "KeySignature",
	KindChannel:        "Channel",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsText reports whether events of this kind carry a Text payload.
func (k Kind) IsText() bool {
	return k >= KindText && k <= KindCuePoint
}

// Kinds lists every event kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, len(kindNames))
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// Event is one decoded track event. The payload's dynamic type is fixed by
// Kind:
//
//	KindSysExF0, KindSysExEscape          SysEx
//	KindSequenceNumber                    SequenceNumber
//	KindText .. KindCuePoint              Text
//	KindChannelPrefix                     ChannelPrefix
//	KindEndOfTrack                        EndOfTrackMeta
//	KindTempo                             Tempo
//	KindSMPTEOffset                       SMPTEOffset
//	KindTimeSignature                     TimeSignature
//	KindKeySignature                      KeySignature
//	KindChannel                           Channel
//	KindNoOp                              UnknownMeta
//	KindUnknown, KindEnd                  nil
//
// Text and SysEx data alias the decoder's buffer and are overwritten by the
// next ReadEvent; use Clone to keep them.
type Event struct {
	Kind    Kind
	Delta   uint32 // ticks since the previous event in the track
	Payload Payload
}

// Payload is implemented only by the payload types in this package.
type Payload interface {
	isPayload()
}

// Clone returns a copy of e that does not share the decoder's buffer.
func (e Event) Clone() Event {
	switch p := e.Payload.(type) {
	case Text:
		p.Data = append([]byte(nil), p.Data...)
		e.Payload = p
	case SysEx:
		p.Data = append([]byte(nil), p.Data...)
		e.Payload = p
	}
	return e
}

func (e Event) String() string {
	if e.Payload == nil {
		return fmt.Sprintf("%dT %s", e.Delta, e.Kind)
	}
	return fmt.Sprintf("%dT %s %v", e.Delta, e.Kind, e.Payload)
}

// SysEx is the payload of F0 and F7 events.
type SysEx struct {
	Data     []byte // stored bytes, at most the buffer capacity minus one
	Declared uint32 // length declared in the file
}

// Truncated reports whether bytes were dropped to fit the buffer.
func (s SysEx) Truncated() bool { return uint32(len(s.Data)) < s.Declared }

func (s SysEx) String() string {
	return fmt.Sprintf("len=%d/%d % X", len(s.Data), s.Declared, s.Data)
}

// Text is the payload of the text-shaped meta events.
type Text struct {
	Data     []byte
	Declared uint32
}

// Truncated reports whether bytes were dropped to fit the buffer.
func (t Text) Truncated() bool { return uint32(len(t.Data)) < t.Declared }

func (t Text) String() string { return strconv.Quote(string(t.Data)) }

// SequenceNumber is the payload of meta 0x00.
type SequenceNumber struct {
	Number uint16
}

// ChannelPrefix is the payload of meta 0x20.
type ChannelPrefix struct {
	Channel uint8
}

// EndOfTrackMeta is the (empty) payload of meta 0x2F.
type EndOfTrackMeta struct{}

// Tempo is the payload of meta 0x51.
type Tempo struct {
	MicrosecondsPerBeat uint32 `json:"microsecondsPerBeat"`
}

// BPM converts the tempo to quarter notes per minute.
func (t Tempo) BPM() float64 {
	if t.MicrosecondsPerBeat == 0 {
		return 0
	}
	return 60_000_000 / float64(t.MicrosecondsPerBeat)
}

// SMPTEOffset is the payload of meta 0x54: the SMPTE time at which the
// track starts.
type SMPTEOffset struct {
	Hours, Minutes, Seconds, Frames, FractionalFrames uint8
}

// TimeSignature is the payload of meta 0x58.
type TimeSignature struct {
	Numerator     uint8  `json:"numerator"`
	Denominator   uint32 `json:"denominator"`   // 2 to the power of the stored exponent
	Metronome     uint8  `json:"metronome"`     // MIDI clocks per metronome click
	ThirtySeconds uint8  `json:"thirtySeconds"` // notated 32nd notes per 24 MIDI clocks
}

// KeySignature is the payload of meta 0x59.
type KeySignature struct {
	Sharps int8 `json:"sharps"` // negative for flats
	Minor  bool `json:"minor"`
}

// UnknownMeta describes a meta event whose type isn't decoded. Its data has
// already been consumed and discarded.
type UnknownMeta struct {
	Type   byte
	Length uint32
}

func (SysEx) isPayload()          {}
func (Text) isPayload()           {}
func (SequenceNumber) isPayload() {}
func (ChannelPrefix) isPayload()  {}
func (EndOfTrackMeta) isPayload() {}
func (Tempo) isPayload()          {}
func (SMPTEOffset) isPayload()    {}
func (TimeSignature) isPayload()  {}
func (KeySignature) isPayload()   {}
func (Channel) isPayload()        {}
func (UnknownMeta) isPayload()    {}
