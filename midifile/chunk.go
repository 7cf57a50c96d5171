package midifile

import (
	"io"

	"github.com/pkg/errors"
)

// ChunkKind classifies a chunk by its signature.
type ChunkKind uint8

const (
	ChunkUnknown ChunkKind = iota // unrecognised signature, or unreadable chunk header
	ChunkEnd                      // no chunk follows
	ChunkHeader                   // MThd
	ChunkTrack                    // MTrk
)

var (
	headerSignature = [4]byte{'M', 'T', 'h', 'd'}
	trackSignature  = [4]byte{'M', 'T', 'r', 'k'}
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkEnd:
		return "end"
	case ChunkHeader:
		return "MThd"
	case ChunkTrack:
		return "MTrk"
	default:
		return "unknown"
	}
}

// OpenChunk reads the next chunk's signature and length and makes that
// length the byte budget for all following reads. Running status and the
// current event are cleared.
//
// A source that ends cleanly before the signature returns ChunkEnd with
// ErrEndOfStream. An unrecognised signature returns ChunkUnknown with a nil
// error; its body can be passed over with SkipChunk.
func (d *Decoder) OpenChunk() (ChunkKind, error) {
	if d.src == nil {
		return ChunkUnknown, errNotOpen
	}

	d.bytesLeft = noChunk
	d.chunk = ChunkUnknown
	d.signature = [4]byte{}
	d.runningStatus = 0
	d.event = Event{}
	d.err = nil

	var sig [4]byte
	for i := range sig {
		b, err := d.src.ReadByte()
		if err != nil {
			if i == 0 && err == io.EOF {
				d.chunk = ChunkEnd
				return ChunkEnd, ErrEndOfStream
			}
			return ChunkUnknown, d.fail(errors.Wrapf(ErrMalformedChunk, "chunk signature byte %d: %v", i+1, err))
		}
		sig[i] = b
	}
	d.signature = sig

	// The length field is read through the chunk reader, so give it a
	// budget of exactly its own size.
	d.bytesLeft = 4
	length, err := d.readFixed(4)
	if err != nil {
		d.bytesLeft = noChunk
		return ChunkUnknown, d.fail(errors.Wrapf(ErrMalformedChunk, "chunk length: %v", err))
	}
	d.bytesLeft = int64(length)

	switch sig {
	case headerSignature:
		d.chunk = ChunkHeader
	case trackSignature:
		d.chunk = ChunkTrack
	default:
		d.debugf("unknown chunk signature % X", sig[:])
		d.chunk = ChunkUnknown
	}
	return d.chunk, nil
}

// SkipChunk consumes whatever is left of the current chunk, byte by byte,
// so the next OpenChunk starts at the following chunk.
func (d *Decoder) SkipChunk() error {
	for d.bytesLeft > 0 {
		if _, err := d.readChunkByte(); err != nil {
			return d.fail(errors.Wrap(err, "skipping chunk"))
		}
	}
	return nil
}

// ChunkBytesLeft is the number of bytes not yet consumed from the current
// chunk, or -1 when no chunk is open.
func (d *Decoder) ChunkBytesLeft() int64 {
	return d.bytesLeft
}

// Chunk is the kind of the chunk most recently opened.
func (d *Decoder) Chunk() ChunkKind {
	return d.chunk
}

// ChunkSignature is the raw 4-byte signature of the chunk most recently
// opened.
func (d *Decoder) ChunkSignature() [4]byte {
	return d.signature
}
