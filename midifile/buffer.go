package midifile

import "github.com/pkg/errors"

// truncationLogEvery thins the debug line for payloads cut to the buffer.
const truncationLogEvery = 100

// readBounded reads exactly length bytes from the chunk, keeping at most
// len(d.buf)-1 of them followed by a zero terminator. Bytes beyond the
// buffer are read and dropped so the chunk budget stays right. The returned
// slice aliases d.buf.
func (d *Decoder) readBounded(length uint32) ([]byte, error) {
	d.buf[0] = 0

	stored := length
	if limit := uint32(len(d.buf) - 1); stored > limit {
		stored = limit
	}

	for i := uint32(0); i < stored; i++ {
		b, err := d.readChunkByte()
		if err != nil {
			return nil, errors.Wrapf(err, "variable byte[%d]", i)
		}
		d.buf[i] = b
	}
	d.buf[stored] = 0

	for i := stored; i < length; i++ {
		if _, err := d.readChunkByte(); err != nil {
			return nil, errors.Wrapf(err, "skipping variable byte[%d]", i)
		}
	}
	if stored < length {
		d.debugEvery(truncationLogEvery, "truncated %d-byte payload to %d bytes", length, stored)
	}
	return d.buf[:stored:stored], nil
}
