package midifile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-smfstream/debug"
	"go-smfstream/midifile"
)

func TestRunningStatus(t *testing.T) {
	d := openTrack(t, midifile.Options{},
		[]byte{0x00, 0x90, 0x40, 0x7F},
		[]byte{0x10, 0x41, 0x00},
	)

	first := readEvent(t, d)
	second := readEvent(t, d)

	assert.Equal(t, midifile.KindChannel, second.Kind)
	assert.Equal(t, uint32(0x10), second.Delta)
	assert.Equal(t, midifile.Channel{Op: midifile.NoteOn, Channel: 0, Param1: 0x41, Param2: 0x00}, second.Payload)
	assert.Equal(t, first.Payload.(midifile.Channel).Status(), second.Payload.(midifile.Channel).Status())

	_, err := d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrEndOfTrack)
}

func TestRunningStatusClearedByMeta(t *testing.T) {
	d := openTrack(t, midifile.Options{},
		[]byte{0x00, 0x90, 0x40, 0x7F},
		[]byte{0x00, 0xFF, 0x01, 0x00},
		[]byte{0x00, 0x41, 0x00},
	)

	readEvent(t, d)
	text := readEvent(t, d)
	assert.Equal(t, midifile.KindText, text.Kind)
	assert.Empty(t, text.Payload.(midifile.Text).Data)

	ev, err := d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrMalformedEvent)
	assert.Contains(t, err.Error(), "running status used, but not active")
	assert.Equal(t, midifile.KindUnknown, ev.Kind)

	// The track stays failed.
	_, again := d.ReadEvent()
	assert.Equal(t, err, again)
}

func TestRunningStatusClearedBySysEx(t *testing.T) {
	d := openTrack(t, midifile.Options{},
		[]byte{0x00, 0xB2, 0x07, 0x64},
		[]byte{0x00, 0xF0, 0x02, 0x7E, 0xF7},
		[]byte{0x00, 0x0A, 0x10},
	)

	readEvent(t, d)
	readEvent(t, d)
	_, err := d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrMalformedEvent)
}

func TestRunningStatusNeverSet(t *testing.T) {
	d := openTrack(t, midifile.Options{}, []byte{0x00, 0x40, 0x7F})
	_, err := d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrMalformedEvent)
}

func TestProgramChangeHasOneParameter(t *testing.T) {
	d := openTrack(t, midifile.Options{}, []byte{0x00, 0xC0, 0x05})
	require.Equal(t, int64(3), d.ChunkBytesLeft())

	ev := readEvent(t, d)
	assert.Equal(t, midifile.Channel{Op: midifile.ProgramChange, Param1: 5}, ev.Payload)
	assert.Equal(t, int64(0), d.ChunkBytesLeft())

	end, err := d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrEndOfTrack)
	assert.Equal(t, midifile.KindEnd, end.Kind)
}

func TestChannelMessages(t *testing.T) {
	d := openTrack(t, midifile.Options{},
		[]byte{0x00, 0x83, 0x3C, 0x40},
		[]byte{0x00, 0xA4, 0x3C, 0x22},
		[]byte{0x00, 0xB5, 0x40, 0x7F},
		[]byte{0x00, 0xD6, 0x33},
		[]byte{0x00, 0x11},
		[]byte{0x00, 0xEF, 0x00, 0x40},
		[]byte{0x00, 0x7F, 0x7F},
	)

	want := []midifile.Channel{
		{Op: midifile.NoteOff, Channel: 3, Param1: 0x3C, Param2: 0x40},
		{Op: midifile.NoteAftertouch, Channel: 4, Param1: 0x3C, Param2: 0x22},
		{Op: midifile.ControlChange, Channel: 5, Param1: 0x40, Param2: 0x7F},
		{Op: midifile.ChannelAftertouch, Channel: 6, Param1: 0x33},
		{Op: midifile.ChannelAftertouch, Channel: 6, Param1: 0x11},
		{Op: midifile.PitchBend, Channel: 15, Param1: 0x00, Param2: 0x40},
		{Op: midifile.PitchBend, Channel: 15, Param1: 0x7F, Param2: 0x7F},
	}
	for _, w := range want {
		ev := readEvent(t, d)
		assert.Equal(t, midifile.KindChannel, ev.Kind)
		assert.Equal(t, w, ev.Payload)
	}

	assert.Equal(t, int16(0), want[5].PitchBendValue())
	assert.Equal(t, int16(8191), want[6].PitchBendValue())
	assert.Equal(t, byte(0xEF), want[5].Status())
}

func TestSystemStatusByteRejected(t *testing.T) {
	d := openTrack(t, midifile.Options{}, []byte{0x00, 0xF2, 0x00, 0x00})
	_, err := d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrMalformedEvent)
}

func TestEndOfTrackMetaThenEnd(t *testing.T) {
	d := openTrack(t, midifile.Options{}, []byte{0x60, 0xFF, 0x2F, 0x00})

	ev := readEvent(t, d)
	assert.Equal(t, midifile.KindEndOfTrack, ev.Kind)
	assert.Equal(t, uint32(0x60), ev.Delta)
	assert.Equal(t, midifile.EndOfTrackMeta{}, ev.Payload)

	ev, err := d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrEndOfTrack)
	assert.True(t, midifile.IsEnd(err))
	assert.Equal(t, midifile.KindEnd, ev.Kind)
	assert.Equal(t, midifile.KindEnd, d.Event().Kind)
}

func TestFixedMetaEvents(t *testing.T) {
	cases := []struct {
		name  string
		event []byte
		kind  midifile.Kind
		want  midifile.Payload
	}{
		{"sequence number", []byte{0x00, 0xFF, 0x00, 0x02, 0x01, 0x02}, midifile.KindSequenceNumber, midifile.SequenceNumber{Number: 0x0102}},
		{"channel prefix", []byte{0x00, 0xFF, 0x20, 0x01, 0x09}, midifile.KindChannelPrefix, midifile.ChannelPrefix{Channel: 9}},
		{"tempo", []byte{0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}, midifile.KindTempo, midifile.Tempo{MicrosecondsPerBeat: 500000}},
		{"smpte offset", []byte{0x00, 0xFF, 0x54, 0x05, 0x01, 0x02, 0x03, 0x04, 0x05}, midifile.KindSMPTEOffset,
			midifile.SMPTEOffset{Hours: 1, Minutes: 2, Seconds: 3, Frames: 4, FractionalFrames: 5}},
		{"time signature", []byte{0x00, 0xFF, 0x58, 0x04, 0x06, 0x03, 0x24, 0x08}, midifile.KindTimeSignature,
			midifile.TimeSignature{Numerator: 6, Denominator: 8, Metronome: 0x24, ThirtySeconds: 8}},
		{"key signature flats", []byte{0x00, 0xFF, 0x59, 0x02, 0xFD, 0x01}, midifile.KindKeySignature, midifile.KeySignature{Sharps: -3, Minor: true}},
		{"key signature sharps", []byte{0x00, 0xFF, 0x59, 0x02, 0x07, 0x00}, midifile.KindKeySignature, midifile.KeySignature{Sharps: 7}},
		{"key signature seven flats", []byte{0x00, 0xFF, 0x59, 0x02, 0xF9, 0x00}, midifile.KindKeySignature, midifile.KeySignature{Sharps: -7}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := openTrack(t, midifile.Options{}, c.event)
			ev := readEvent(t, d)
			assert.Equal(t, c.kind, ev.Kind)
			assert.Equal(t, c.want, ev.Payload)
			assert.Equal(t, int64(0), d.ChunkBytesLeft())
		})
	}
}

func TestTempoBPM(t *testing.T) {
	assert.InDelta(t, 120.0, midifile.Tempo{MicrosecondsPerBeat: 500000}.BPM(), 1e-9)
	assert.Zero(t, midifile.Tempo{}.BPM())
}

func TestFixedMetaWrongLength(t *testing.T) {
	cases := map[string][]byte{
		"sequence number": {0x00, 0xFF, 0x00, 0x01, 0x01},
		"channel prefix":  {0x00, 0xFF, 0x20, 0x02, 0x01, 0x02},
		"end of track":    {0x00, 0xFF, 0x2F, 0x01, 0x00},
		"tempo":           {0x00, 0xFF, 0x51, 0x02, 0x07, 0xA1},
		"smpte offset":    {0x00, 0xFF, 0x54, 0x04, 0x01, 0x02, 0x03, 0x04},
		"time signature":  {0x00, 0xFF, 0x58, 0x03, 0x04, 0x02, 0x18},
		"key signature":   {0x00, 0xFF, 0x59, 0x03, 0x00, 0x00, 0x00},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			d := openTrack(t, midifile.Options{}, event)
			ev, err := d.ReadEvent()
			assert.ErrorIs(t, err, midifile.ErrMalformedEvent)
			assert.Equal(t, midifile.KindUnknown, ev.Kind)
		})
	}
}

func TestTextMetaEvents(t *testing.T) {
	kinds := map[byte]midifile.Kind{
		0x01: midifile.KindText,
		0x02: midifile.KindCopyright,
		0x03: midifile.KindName,
		0x04: midifile.KindInstrument,
		0x05: midifile.KindLyric,
		0x06: midifile.KindMarker,
		0x07: midifile.KindCuePoint,
	}
	for metaType, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			d := openTrack(t, midifile.Options{}, []byte{0x00, 0xFF, metaType, 0x05}, []byte("Piano"))
			ev := readEvent(t, d)
			assert.Equal(t, kind, ev.Kind)
			assert.True(t, ev.Kind.IsText())
			text := ev.Payload.(midifile.Text)
			assert.Equal(t, "Piano", string(text.Data))
			assert.Equal(t, uint32(5), text.Declared)
			assert.False(t, text.Truncated())
		})
	}
}

func TestTextTruncatedToCapacity(t *testing.T) {
	long := bytes.Repeat([]byte{'a'}, 200)
	buf := make([]byte, 141)
	d := openTrack(t, midifile.Options{Buffer: buf},
		append([]byte{0x00, 0xFF, 0x01, 0x81, 0x48}, long...),
		[]byte{0x00, 0x90, 0x40, 0x7F},
	)

	ev := readEvent(t, d)
	text := ev.Payload.(midifile.Text)
	assert.Len(t, text.Data, 140)
	assert.Equal(t, uint32(200), text.Declared)
	assert.True(t, text.Truncated())
	assert.Equal(t, byte(0), buf[140], "terminator")

	// All 200 bytes were consumed, so the next event lines up.
	next := readEvent(t, d)
	assert.Equal(t, midifile.Channel{Op: midifile.NoteOn, Param1: 0x40, Param2: 0x7F}, next.Payload)
}

func TestSysExTruncatedToCapacity(t *testing.T) {
	var log bytes.Buffer
	debug.SetOutput(&log)
	defer debug.Disable()

	body := append(bytes.Repeat([]byte{0x42}, 19), 0xF7)
	d := openTrack(t, midifile.Options{BufferCapacity: 8, Debug: true},
		append(append([]byte{0x00, 0xF0}, encodeVarLen(uint32(len(body)))...), body...),
		[]byte{0x10, 0x91, 0x3C, 0x40},
	)

	ev := readEvent(t, d)
	assert.Equal(t, midifile.KindSysExF0, ev.Kind)
	sx := ev.Payload.(midifile.SysEx)
	assert.True(t, sx.Truncated())
	assert.Equal(t, uint32(20), sx.Declared)
	assert.Equal(t, bytes.Repeat([]byte{0x42}, 7), sx.Data)

	// The dropped bytes, F7 included, were still consumed.
	next := readEvent(t, d)
	assert.Equal(t, uint32(0x10), next.Delta)
	assert.Equal(t, midifile.Channel{Op: midifile.NoteOn, Channel: 1, Param1: 0x3C, Param2: 0x40}, next.Payload)
	assert.Zero(t, d.ChunkBytesLeft())

	assert.Contains(t, log.String(), "truncated 20-byte payload to 7 bytes (every 100, count=1)")
}

func TestBufferCapacityOption(t *testing.T) {
	assert.Equal(t, midifile.DefaultBufferCapacity, midifile.NewDecoder(midifile.Options{}).BufferCapacity())
	assert.Equal(t, 1, midifile.NewDecoder(midifile.Options{BufferCapacity: -4}).BufferCapacity())
	assert.Equal(t, 8, midifile.NewDecoder(midifile.Options{BufferCapacity: 8}).BufferCapacity())

	d := openTrack(t, midifile.Options{BufferCapacity: 1}, []byte{0x00, 0xFF, 0x03, 0x03}, []byte("abc"))
	text := readEvent(t, d).Payload.(midifile.Text)
	assert.Empty(t, text.Data)
	assert.Equal(t, uint32(3), text.Declared)
}

func TestPayloadBufferIsReused(t *testing.T) {
	d := openTrack(t, midifile.Options{},
		[]byte{0x00, 0xFF, 0x03, 0x03}, []byte("one"),
		[]byte{0x00, 0xFF, 0x03, 0x03}, []byte("two"),
	)

	first := readEvent(t, d)
	kept := first.Clone()
	readEvent(t, d)

	assert.Equal(t, "two", string(first.Payload.(midifile.Text).Data))
	assert.Equal(t, "one", string(kept.Payload.(midifile.Text).Data))
}

func TestSysExEvents(t *testing.T) {
	d := openTrack(t, midifile.Options{},
		[]byte{0x00, 0xF0, 0x05, 0x7E, 0x7F, 0x09, 0x01, 0xF7},
		[]byte{0x00, 0xF7, 0x02, 0xF3, 0x01},
	)

	ev := readEvent(t, d)
	assert.Equal(t, midifile.KindSysExF0, ev.Kind)
	sx := ev.Payload.(midifile.SysEx)
	assert.Equal(t, []byte{0x7E, 0x7F, 0x09, 0x01, 0xF7}, sx.Data)
	assert.False(t, sx.Truncated())

	ev = readEvent(t, d)
	assert.Equal(t, midifile.KindSysExEscape, ev.Kind)
	assert.Equal(t, []byte{0xF3, 0x01}, ev.Payload.(midifile.SysEx).Data)
}

func TestUnknownMetaIsNoOp(t *testing.T) {
	d := openTrack(t, midifile.Options{},
		[]byte{0x00, 0xFF, 0x7F, 0x03, 0x00, 0x00, 0x41},
		[]byte{0x00, 0xFF, 0x2F, 0x00},
	)

	ev := readEvent(t, d)
	assert.Equal(t, midifile.KindNoOp, ev.Kind)
	assert.Equal(t, midifile.UnknownMeta{Type: 0x7F, Length: 3}, ev.Payload)
	assert.Equal(t, midifile.KindEndOfTrack, readEvent(t, d).Kind)
}

func TestEventBodyTruncatedByChunk(t *testing.T) {
	cases := map[string][]byte{
		"channel param":   {0x00, 0x90, 0x40},
		"meta type":       {0x00, 0xFF},
		"meta length":     {0x00, 0xFF, 0x01},
		"text data":       {0x00, 0xFF, 0x01, 0x04, 'a', 'b'},
		"tempo data":      {0x00, 0xFF, 0x51, 0x03, 0x07},
		"sysex length":    {0x00, 0xF0},
		"unknown meta":    {0x00, 0xFF, 0x60, 0x02, 0x00},
		"event type byte": {0x00},
		"partial delta":   {0x81},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			d := openTrack(t, midifile.Options{}, event)
			_, err := d.ReadEvent()
			assert.ErrorIs(t, err, midifile.ErrTruncated)
			assert.False(t, midifile.IsEnd(err))
		})
	}
}

func TestEventTruncatedBySource(t *testing.T) {
	// The chunk claims 10 bytes, the file ends after 3.
	data := file(header(0, 1, 96), []byte("MTrk\x00\x00\x00\x0A\x00\x90\x40"))
	d, err := midifile.Open(bytes.NewReader(data), midifile.Options{})
	require.NoError(t, err)
	_, err = d.OpenChunk()
	require.NoError(t, err)

	_, err = d.ReadEvent()
	assert.ErrorIs(t, err, midifile.ErrTruncated)
}

func TestVerboseAndDebugLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, debug.EnableAt(path))
	defer debug.Disable()

	d := openTrack(t, midifile.Options{Debug: true, Verbose: true},
		[]byte{0x00, 0x90, 0x40, 0x7F},
		[]byte{0x00, 0xFF, 0x51, 0x02, 0x00, 0x00},
	)
	readEvent(t, d)
	_, err := d.ReadEvent()
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "NoteOn ch=0 64 127")
	assert.Contains(t, string(data), "garbled meta Tempo length 2")
}

func TestKindNames(t *testing.T) {
	assert.Len(t, midifile.Kinds(), 20)
	assert.Equal(t, "SysEx", midifile.KindSysExF0.String())
	assert.Equal(t, "KeySignature", midifile.KindKeySignature.String())
	assert.Equal(t, "Kind(99)", midifile.Kind(99).String())
	assert.False(t, midifile.KindTempo.IsText())
}
