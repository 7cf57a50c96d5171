package midifile

import (
	"strconv"

	"github.com/pkg/errors"
)

// Format is the organisation of the tracks in a file.
type Format int

const (
	FormatUnknown      Format = -1
	FormatSingle       Format = 0 // one track
	FormatSimultaneous Format = 1 // tracks played together
	FormatSequential   Format = 2 // independent sequences
)

func (f Format) String() string {
	switch f {
	case FormatSingle:
		return "single"
	case FormatSimultaneous:
		return "simultaneous"
	case FormatSequential:
		return "sequential"
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

const headerLength = 6

// smpteDivision is the division bit that selects SMPTE frame timing.
const smpteDivision = 0x8000

// Open attaches the decoder to src and reads the file header. On success
// Format, TrackCount and TicksPerBeat are valid until End. On failure the
// decoder is left detached, as after End.
func (d *Decoder) Open(src ByteSource) (err error) {
	d.reset()
	if src == nil {
		return errNotOpen
	}
	d.src = src
	defer func() {
		if err != nil {
			d.reset()
		}
	}()

	kind, err := d.OpenChunk()
	if err != nil {
		return d.fail(errors.Wrapf(ErrMalformedHeader, "reading header chunk: %v", err))
	}
	if kind != ChunkHeader {
		return d.fail(errors.Wrapf(ErrMalformedHeader, "expected MThd, found %q", d.signature[:]))
	}
	if d.bytesLeft != headerLength {
		return d.fail(errors.Wrapf(ErrMalformedHeader, "expected header length %d, found %d", headerLength, d.bytesLeft))
	}

	format, err := d.readFixed(2)
	if err != nil {
		return d.fail(errors.Wrap(err, "header format"))
	}
	if format > uint32(FormatSequential) {
		return d.fail(errors.Wrapf(ErrMalformedHeader, "format %d", format))
	}

	tracks, err := d.readFixed(2)
	if err != nil {
		return d.fail(errors.Wrap(err, "header track count"))
	}

	division, err := d.readFixed(2)
	if err != nil {
		return d.fail(errors.Wrap(err, "header division"))
	}
	if division&smpteDivision != 0 {
		return d.fail(errors.Wrapf(ErrUnsupportedHeaderFormat, "SMPTE division %#04x", division))
	}

	if d.bytesLeft > 0 {
		return d.fail(errors.Wrapf(ErrMalformedHeader, "%d header bytes left over", d.bytesLeft))
	}

	d.format = Format(format)
	d.trackCount = int(tracks)
	d.ticksPerBeat = int(division)
	d.debugf("header: %s", d)
	return nil
}
