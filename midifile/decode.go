package midifile

import (
	"github.com/pkg/errors"
)

const (
	statusSysEx       = 0xF0
	statusSysExEscape = 0xF7
	statusMeta        = 0xFF
)

// ReadEvent decodes the next event of the open track chunk.
//
// When the chunk's bytes are used up exactly where a delta-time would
// start, ReadEvent returns an event of KindEnd and ErrEndOfTrack. Any other
// error means the track is corrupt; the decoder keeps returning that error
// until the next OpenChunk.
func (d *Decoder) ReadEvent() (Event, error) {
	if d.src == nil {
		return Event{}, errNotOpen
	}
	if d.err != nil {
		return d.event, d.err
	}
	if d.chunk != ChunkTrack {
		return d.failEvent(errors.Wrapf(ErrMalformedChunk, "reading events from a %s chunk", d.chunk))
	}

	d.event = Event{}
	if d.bytesLeft <= 0 {
		d.event.Kind = KindEnd
		return d.event, ErrEndOfTrack
	}

	delta, err := d.readVarLen()
	if err != nil {
		return d.failEvent(errors.Wrap(err, "delta time"))
	}

	status, err := d.readChunkByte()
	if err != nil {
		return d.failEvent(errors.Wrap(err, "event type byte"))
	}

	var ev Event
	switch {
	case status == statusSysEx || status == statusSysExEscape:
		ev, err = d.readSysEx(status)
	case status == statusMeta:
		ev, err = d.readMeta()
	default:
		ev, err = d.readChannel(status)
	}
	if err != nil {
		return d.failEvent(err)
	}

	ev.Delta = delta
	d.event = ev
	d.trace(ev)
	return ev, nil
}

// failEvent records a hard decode error against the current track.
func (d *Decoder) failEvent(err error) (Event, error) {
	d.event = Event{Kind: KindUnknown}
	d.err = d.fail(err)
	return d.event, d.err
}

func (d *Decoder) readSysEx(status byte) (Event, error) {
	// System exclusive interrupts running status.
	d.runningStatus = 0

	kind := KindSysExF0
	if status == statusSysExEscape {
		kind = KindSysExEscape
	}

	length, err := d.readVarLen()
	if err != nil {
		return Event{}, errors.Wrapf(err, "%s length", kind)
	}
	data, err := d.readBounded(length)
	if err != nil {
		return Event{}, errors.Wrapf(err, "%s data", kind)
	}
	return Event{Kind: kind, Payload: SysEx{Data: data, Declared: length}}, nil
}

func (d *Decoder) readChannel(status byte) (Event, error) {
	var (
		param1  byte
		running bool
	)
	if status&0x80 == 0 {
		// Not a status byte: it's the first parameter of a message that
		// reuses the previous status.
		if d.runningStatus&0x80 == 0 {
			return Event{}, errors.Wrapf(ErrMalformedEvent, "running status used, but not active (data byte %#02x)", status)
		}
		param1, running = status, true
		status = d.runningStatus
	}
	if status >= 0xF0 {
		return Event{}, errors.Wrapf(ErrMalformedEvent, "unexpected system status byte %#02x in track", status)
	}

	ch := Channel{
		Op:      ChannelOp(status >> 4),
		Channel: status & 0x0F,
	}
	d.runningStatus = status

	if !running {
		b, err := d.readChunkByte()
		if err != nil {
			return Event{}, errors.Wrapf(err, "%s parameter 1", ch.Op)
		}
		param1 = b
	}
	ch.Param1 = param1

	if ch.Op.Params() == 2 {
		b, err := d.readChunkByte()
		if err != nil {
			return Event{}, errors.Wrapf(err, "%s parameter 2", ch.Op)
		}
		ch.Param2 = b
	}

	return Event{Kind: KindChannel, Payload: ch}, nil
}
