package midifile

import (
	"io"

	"github.com/pkg/errors"
)

// ByteSource supplies the raw file one byte at a time. io.EOF signals that
// the source is exhausted. The decoder never closes it.
type ByteSource = io.ByteReader

// noChunk marks the byte budget when no chunk is open.
const noChunk = -1

// readChunkByte reads one byte from the open chunk, charging it against the
// chunk budget. It never reads past the declared chunk length.
func (d *Decoder) readChunkByte() (byte, error) {
	if d.bytesLeft <= 0 {
		return 0, errors.Wrap(ErrTruncated, "end of chunk")
	}
	d.bytesLeft--
	b, err := d.src.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, errors.Wrapf(ErrTruncated, "end of stream with %d chunk bytes unread", d.bytesLeft+1)
		}
		return 0, errors.Wrapf(ErrTruncated, "read: %v", err)
	}
	return b, nil
}

// readFixed reads an n-byte (1..4) big-endian unsigned integer from the
// open chunk.
func (d *Decoder) readFixed(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, err := d.readChunkByte()
		if err != nil {
			return 0, errors.Wrapf(err, "fixed-length number byte %d of %d", i+1, n)
		}
		v = v<<8 | uint32(b)
	}
	return v, nil
}
