package midifile

import (
	"io"

	"github.com/pkg/errors"
)

// MaxVarLenBytes is the longest variable-length quantity accepted. Four
// bytes carry 28 bits, which covers every delta-time and length in a
// well-formed file.
const MaxVarLenBytes = 4

// MaxVarLen is the largest value a variable-length quantity can hold.
const MaxVarLen = 1<<(7*MaxVarLenBytes) - 1

// decodeVarLen assembles a variable-length quantity: 7 data bits per byte,
// most significant group first, high bit set on every byte but the last.
func decodeVarLen(next func() (byte, error)) (uint32, error) {
	var v uint32
	for i := 0; i < MaxVarLenBytes; i++ {
		b, err := next()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errors.Wrapf(ErrMalformedEvent, "variable-length number not terminated after %d bytes", MaxVarLenBytes)
}

// ReadVarLen decodes one variable-length quantity from r. Running out of
// input before the terminating byte is ErrTruncated.
func ReadVarLen(r io.ByteReader) (uint32, error) {
	return decodeVarLen(func() (byte, error) {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrapf(ErrTruncated, "variable-length number: %v", err)
		}
		return b, nil
	})
}

func (d *Decoder) readVarLen() (uint32, error) {
	return decodeVarLen(d.readChunkByte)
}
