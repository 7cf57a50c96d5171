// Package midifile decodes a Standard MIDI File one event at a time from a
// byte source, without holding the file or its tracks in memory.
//
// A typical loop:
//
//	d, err := midifile.Open(src, midifile.Options{})
//	for {
//		kind, err := d.OpenChunk()
//		if errors.Is(err, midifile.ErrEndOfStream) {
//			break
//		}
//		if kind != midifile.ChunkTrack {
//			d.SkipChunk()
//			continue
//		}
//		for {
//			ev, err := d.ReadEvent()
//			if err != nil {
//				break // ErrEndOfTrack, or the track is corrupt
//			}
//			handle(ev)
//		}
//	}
package midifile

import (
	"fmt"

	"go-smfstream/debug"
)

// DefaultBufferCapacity holds 140 payload bytes plus the terminator.
const DefaultBufferCapacity = 140 + 1

// Options configure a Decoder. The zero value is usable.
type Options struct {
	// BufferCapacity is the size of the text/sysex buffer, terminator
	// included. Longer payloads are truncated to BufferCapacity-1 bytes.
	// Zero means DefaultBufferCapacity; anything below 1 is raised to 1.
	BufferCapacity int

	// Buffer, if non-nil, is used as the payload buffer instead of
	// allocating one, and its length overrides BufferCapacity.
	Buffer []byte

	// Debug logs each format error where it's detected.
	Debug bool

	// Verbose logs every decoded event.
	Verbose bool
}

// Decoder holds the state of one open MIDI file stream. It is not safe
// for concurrent use.
type Decoder struct {
	src  ByteSource
	opts Options
	buf  []byte

	format       Format
	trackCount   int
	ticksPerBeat int

	chunk     ChunkKind
	signature [4]byte
	bytesLeft int64

	// runningStatus is the last channel status byte, or 0 when inactive.
	runningStatus byte

	event Event
	// err is sticky until the next OpenChunk once a track is found corrupt.
	err error
}

// NewDecoder returns a decoder with its payload buffer allocated. Call Open
// before anything else.
func NewDecoder(opts Options) *Decoder {
	buf := opts.Buffer
	if buf == nil {
		n := opts.BufferCapacity
		if n == 0 {
			n = DefaultBufferCapacity
		}
		if n < 1 {
			n = 1
		}
		buf = make([]byte, n)
	} else if len(buf) == 0 {
		buf = make([]byte, 1)
	}
	opts.BufferCapacity = len(buf)

	d := &Decoder{opts: opts, buf: buf}
	d.reset()
	return d
}

// Open is NewDecoder followed by (*Decoder).Open.
func Open(src ByteSource, opts Options) (*Decoder, error) {
	d := NewDecoder(opts)
	if err := d.Open(src); err != nil {
		return nil, err
	}
	return d, nil
}

// End forgets the byte source and all session state. The source itself is
// left untouched; closing it is the caller's job.
func (d *Decoder) End() {
	d.reset()
}

func (d *Decoder) reset() {
	d.src = nil
	d.format = FormatUnknown
	d.trackCount = -1
	d.ticksPerBeat = 0
	d.chunk = ChunkUnknown
	d.signature = [4]byte{}
	d.bytesLeft = noChunk
	d.runningStatus = 0
	d.event = Event{}
	d.err = nil
}

// Format is the file format from the header.
func (d *Decoder) Format() Format { return d.format }

// TrackCount is the number of track chunks the header announces.
func (d *Decoder) TrackCount() int { return d.trackCount }

// TicksPerBeat is the header's ticks per quarter note.
func (d *Decoder) TicksPerBeat() int { return d.ticksPerBeat }

// BufferCapacity is the payload buffer size, terminator included.
func (d *Decoder) BufferCapacity() int { return len(d.buf) }

// Event returns the most recently decoded event.
func (d *Decoder) Event() Event { return d.event }

// RunningStatus returns the active running status byte, if any.
func (d *Decoder) RunningStatus() (byte, bool) {
	return d.runningStatus, d.runningStatus&0x80 != 0
}

func (d *Decoder) debugf(format string, args ...any) {
	if d.opts.Debug {
		debug.Log("midifile", format, args...)
	}
}

// debugEvery is debugf for lines that can repeat on every event.
func (d *Decoder) debugEvery(n int, format string, args ...any) {
	if d.opts.Debug {
		debug.LogEvery(n, "midifile", format, args...)
	}
}

// fail logs err when debugging and hands it back.
func (d *Decoder) fail(err error) error {
	d.debugf("%v", err)
	return err
}

func (d *Decoder) trace(ev Event) {
	if d.opts.Verbose {
		debug.Log("event", "%s", ev)
	}
}

// String summarises the header, for diagnostics.
func (d *Decoder) String() string {
	return fmt.Sprintf("format=%s tracks=%d ticks/beat=%d", d.format, d.trackCount, d.ticksPerBeat)
}
