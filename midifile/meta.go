package midifile

import (
	"github.com/pkg/errors"
)

// Meta event type bytes.
const (
	metaSequenceNumber = 0x00
	metaText           = 0x01
	metaCopyright      = 0x02
	metaName           = 0x03
	metaInstrument     = 0x04
	metaLyric          = 0x05
	metaMarker         = 0x06
	metaCuePoint       = 0x07
	metaChannelPrefix  = 0x20
	metaEndOfTrack     = 0x2F
	metaTempo          = 0x51
	metaSMPTEOffset    = 0x54
	metaTimeSignature  = 0x58
	metaKeySignature   = 0x59
)

var textKinds = map[byte]Kind{
	metaText:       KindText,
	metaCopyright:  KindCopyright,
	metaName:       KindName,
	metaInstrument: KindInstrument,
	metaLyric:      KindLyric,
	metaMarker:     KindMarker,
	metaCuePoint:   KindCuePoint,
}

// fixedLengths is the exact declared length each fixed-shape meta event
// must carry.
var fixedLengths = map[byte]struct {
	kind   Kind
	length uint32
}{
	metaSequenceNumber: {KindSequenceNumber, 2},
	metaChannelPrefix:  {KindChannelPrefix, 1},
	metaEndOfTrack:     {KindEndOfTrack, 0},
	metaTempo:          {KindTempo, 3},
	metaSMPTEOffset:    {KindSMPTEOffset, 5},
	metaTimeSignature:  {KindTimeSignature, 4},
	metaKeySignature:   {KindKeySignature, 2},
}

func (d *Decoder) readMeta() (Event, error) {
	// Meta events interrupt running status.
	d.runningStatus = 0

	metaType, err := d.readChunkByte()
	if err != nil {
		return Event{}, errors.Wrap(err, "meta event type")
	}
	length, err := d.readVarLen()
	if err != nil {
		return Event{}, errors.Wrapf(err, "meta %#02x length", metaType)
	}

	if kind, ok := textKinds[metaType]; ok {
		data, err := d.readBounded(length)
		if err != nil {
			return Event{}, errors.Wrapf(err, "meta %s data", kind)
		}
		return Event{Kind: kind, Payload: Text{Data: data, Declared: length}}, nil
	}

	fixed, ok := fixedLengths[metaType]
	if !ok {
		return d.skipMeta(metaType, length)
	}
	if length != fixed.length {
		return Event{}, errors.Wrapf(ErrMalformedEvent, "garbled meta %s length %d, expected %d", fixed.kind, length, fixed.length)
	}

	// Exactly fixed.length bytes follow, so the fields can be read
	// straight into place.
	var f [5]byte
	for i := uint32(0); i < length; i++ {
		if f[i], err = d.readChunkByte(); err != nil {
			return Event{}, errors.Wrapf(err, "meta %s byte %d", fixed.kind, i+1)
		}
	}

	ev := Event{Kind: fixed.kind}
	switch metaType {
	case metaSequenceNumber:
		ev.Payload = SequenceNumber{Number: uint16(f[0])<<8 | uint16(f[1])}
	case metaChannelPrefix:
		ev.Payload = ChannelPrefix{Channel: f[0]}
	case metaEndOfTrack:
		ev.Payload = EndOfTrackMeta{}
	case metaTempo:
		ev.Payload = Tempo{MicrosecondsPerBeat: uint32(f[0])<<16 | uint32(f[1])<<8 | uint32(f[2])}
	case metaSMPTEOffset:
		ev.Payload = SMPTEOffset{
			Hours:            f[0],
			Minutes:          f[1],
			Seconds:          f[2],
			Frames:           f[3],
			FractionalFrames: f[4],
		}
	case metaTimeSignature:
		ev.Payload = TimeSignature{
			Numerator:     f[0],
			Denominator:   1 << f[1],
			Metronome:     f[2],
			ThirtySeconds: f[3],
		}
	case metaKeySignature:
		ev.Payload = KeySignature{
			Sharps: int8(f[0]),
			Minor:  f[1] != 0,
		}
	}
	return ev, nil
}

// skipMeta consumes an unrecognised meta event's data one byte at a time so
// the chunk budget stays exact.
func (d *Decoder) skipMeta(metaType byte, length uint32) (Event, error) {
	for i := uint32(0); i < length; i++ {
		if _, err := d.readChunkByte(); err != nil {
			return Event{}, errors.Wrapf(err, "unknown meta %#02x data byte %d of %d", metaType, i+1, length)
		}
	}
	d.debugf("skipped unknown meta %#02x, length %d", metaType, length)
	return Event{Kind: KindNoOp, Payload: UnknownMeta{Type: metaType, Length: length}}, nil
}
