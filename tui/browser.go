package tui

import (
	"fmt"

	"github.com/pkg/errors"

	"go-smfstream/midi"
	"go-smfstream/midifile"
	"go-smfstream/widgets"
)

type browserState int

const (
	stateBetween browserState = iota // no track chunk open
	stateInTrack
	stateDone
	stateFailed
)

// Line is one rendered row of the event history
type Line struct {
	Kind midifile.Kind
	Text string
}

// browser pulls events from the decoder one at a time and keeps a bounded
// history of rendered lines; decoded events are not retained.
type browser struct {
	dec      *midifile.Decoder
	state    browserState
	track    int // index of the open (or last) track, -1 before the first
	chunkLen int64
	ticks    uint64 // absolute ticks in the current track
	activity *midi.Activity

	history  []Line
	maxLines int
	status   string
}

func newBrowser(dec *midifile.Decoder, maxLines int) *browser {
	if maxLines < 1 {
		maxLines = 1
	}
	return &browser{
		dec:      dec,
		track:    -1,
		activity: midi.NewActivity(12),
		maxLines: maxLines,
	}
}

func (b *browser) push(kind midifile.Kind, format string, args ...any) {
	b.history = append(b.history, Line{Kind: kind, Text: fmt.Sprintf(format, args...)})
	if over := len(b.history) - b.maxLines; over > 0 {
		b.history = append(b.history[:0], b.history[over:]...)
	}
}

// step advances by one unit: opens the next chunk when between tracks,
// otherwise decodes one event. It reports whether a track event was read.
func (b *browser) step() bool {
	switch b.state {
	case stateDone, stateFailed:
		return false
	case stateBetween:
		b.openNext()
		return false
	}

	b.activity.Step()
	ev, err := b.dec.ReadEvent()
	if errors.Is(err, midifile.ErrEndOfTrack) {
		b.state = stateBetween
		b.status = fmt.Sprintf("end of track %d at %d ticks", b.track, b.ticks)
		b.push(midifile.KindEnd, "%8d end of track data", b.ticks)
		return false
	}
	if err != nil {
		b.fail(err)
		return false
	}

	b.ticks += uint64(ev.Delta)
	if c, ok := ev.Payload.(midifile.Channel); ok {
		b.activity.Apply(c)
	}
	b.push(ev.Kind, "%8d %-14s %s", b.ticks, ev.Kind, describe(ev))
	return true
}

func (b *browser) openNext() {
	for {
		kind, err := b.dec.OpenChunk()
		if errors.Is(err, midifile.ErrEndOfStream) {
			b.state = stateDone
			b.status = "end of file"
			return
		}
		if err != nil {
			b.fail(err)
			return
		}
		if kind == midifile.ChunkTrack {
			b.track++
			b.state = stateInTrack
			b.ticks = 0
			b.chunkLen = b.dec.ChunkBytesLeft()
			b.activity.Reset()
			b.status = fmt.Sprintf("track %d", b.track)
			b.push(midifile.KindName, "── track %d (%d bytes)", b.track, b.chunkLen)
			return
		}
		sig := b.dec.ChunkSignature()
		b.push(midifile.KindNoOp, "── skipping %q chunk (%d bytes)", sig[:], b.dec.ChunkBytesLeft())
		if err := b.dec.SkipChunk(); err != nil {
			b.fail(err)
			return
		}
	}
}

// finishTrack reads the rest of the current track.
func (b *browser) finishTrack() {
	if b.state == stateBetween {
		b.openNext()
	}
	for b.state == stateInTrack {
		b.step()
	}
}

// skipTrack drops the rest of the current track without decoding it.
func (b *browser) skipTrack() {
	if b.state != stateInTrack {
		b.openNext()
		return
	}
	left := b.dec.ChunkBytesLeft()
	if err := b.dec.SkipChunk(); err != nil {
		b.fail(err)
		return
	}
	b.state = stateBetween
	b.status = fmt.Sprintf("skipped %d bytes of track %d", left, b.track)
	b.push(midifile.KindNoOp, "── skipped rest of track %d", b.track)
}

func (b *browser) fail(err error) {
	b.state = stateFailed
	b.status = err.Error()
	b.push(midifile.KindUnknown, "error: %v", err)
}

func describe(ev midifile.Event) string {
	switch p := ev.Payload.(type) {
	case midifile.SysEx:
		return widgets.RenderHex(p.Data, 16)
	case midifile.Text:
		if p.Truncated() {
			return fmt.Sprintf("%s (%d of %d bytes)", p, len(p.Data), p.Declared)
		}
		return p.String()
	case midifile.Tempo:
		return fmt.Sprintf("%d µs/beat (%.2f bpm)", p.MicrosecondsPerBeat, p.BPM())
	case midifile.TimeSignature:
		return fmt.Sprintf("%d/%d", p.Numerator, p.Denominator)
	case midifile.KeySignature:
		mode := "major"
		if p.Minor {
			mode = "minor"
		}
		return fmt.Sprintf("%+d %s", p.Sharps, mode)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", p)
	}
}
