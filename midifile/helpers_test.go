package midifile_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"go-smfstream/midifile"
)

// encodeVarLen is the inverse of midifile.ReadVarLen.
func encodeVarLen(v uint32) []byte {
	out := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		out = append([]byte{byte(v&0x7F) | 0x80}, out...)
	}
	return out
}

func chunk(sig string, body ...[]byte) []byte {
	joined := bytes.Join(body, nil)
	out := append([]byte(sig), 0, 0, 0, 0)
	binary.BigEndian.PutUint32(out[len(sig):], uint32(len(joined)))
	return append(out, joined...)
}

func header(format, tracks, division uint16) []byte {
	body := make([]byte, 6)
	binary.BigEndian.PutUint16(body[0:], format)
	binary.BigEndian.PutUint16(body[2:], tracks)
	binary.BigEndian.PutUint16(body[4:], division)
	return chunk("MThd", body)
}

func file(chunks ...[]byte) []byte {
	return bytes.Join(chunks, nil)
}

// openTrack opens a format 0 file holding one track made of events and
// positions the decoder at the start of that track.
func openTrack(t *testing.T, opts midifile.Options, events ...[]byte) *midifile.Decoder {
	t.Helper()
	d, err := midifile.Open(bytes.NewReader(file(header(0, 1, 96), chunk("MTrk", events...))), opts)
	require.NoError(t, err)
	kind, err := d.OpenChunk()
	require.NoError(t, err)
	require.Equal(t, midifile.ChunkTrack, kind)
	return d
}

func readEvent(t *testing.T, d *midifile.Decoder) midifile.Event {
	t.Helper()
	ev, err := d.ReadEvent()
	require.NoError(t, err)
	return ev
}
