// Package inspect builds a one-pass summary of a MIDI file on top of the
// streaming decoder. Only counters and the first few meta values are kept;
// events themselves are not retained.
package inspect

import (
	"github.com/pkg/errors"

	"go-smfstream/midifile"
)

// TrackSummary describes one track chunk.
type TrackSummary struct {
	Index      int                     `json:"index"`
	Name       string                  `json:"name,omitempty"`
	Instrument string                  `json:"instrument,omitempty"`
	Length     uint32                  `json:"length"` // chunk length in bytes
	Events     int                     `json:"events"`
	Ticks      uint64                  `json:"ticks"` // sum of delta times
	Kinds      map[string]int          `json:"kinds"`
	Channels   []int                   `json:"channels,omitempty"`
	Notes      int                     `json:"notes"` // note-ons with non-zero velocity
	Tempo      *midifile.Tempo         `json:"tempo,omitempty"`
	Meter      *midifile.TimeSignature `json:"meter,omitempty"`
	Key        *midifile.KeySignature  `json:"key,omitempty"`
	Truncated  int                     `json:"truncated,omitempty"` // payloads cut to the buffer
	Err        string                  `json:"error,omitempty"`
}

// Summary describes a whole file.
type Summary struct {
	Format        string         `json:"format"`
	TrackCount    int            `json:"trackCount"` // as declared in the header
	TicksPerBeat  int            `json:"ticksPerBeat"`
	Tracks        []TrackSummary `json:"tracks"`
	UnknownChunks int            `json:"unknownChunks,omitempty"`
}

// Summarize reads src to the end. A corrupt track is recorded in its
// TrackSummary.Err and ends the scan, since nothing after it can be
// located reliably; the partial summary is returned with the error.
func Summarize(src midifile.ByteSource, opts midifile.Options) (*Summary, error) {
	d, err := midifile.Open(src, opts)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer d.End()

	s := &Summary{
		Format:       d.Format().String(),
		TrackCount:   d.TrackCount(),
		TicksPerBeat: d.TicksPerBeat(),
	}

	for {
		kind, err := d.OpenChunk()
		if errors.Is(err, midifile.ErrEndOfStream) {
			return s, nil
		}
		if err != nil {
			return s, errors.Wrapf(err, "chunk after track %d", len(s.Tracks))
		}

		if kind != midifile.ChunkTrack {
			s.UnknownChunks++
			if err := d.SkipChunk(); err != nil {
				return s, err
			}
			continue
		}

		ts := TrackSummary{
			Index:  len(s.Tracks),
			Length: uint32(d.ChunkBytesLeft()),
			Kinds:  make(map[string]int),
		}
		err = summarizeTrack(d, &ts)
		s.Tracks = append(s.Tracks, ts)
		if err != nil {
			return s, errors.Wrapf(err, "track %d", ts.Index)
		}
	}
}

func summarizeTrack(d *midifile.Decoder, ts *TrackSummary) error {
	var channels [16]bool
	defer func() {
		for ch, used := range channels {
			if used {
				ts.Channels = append(ts.Channels, ch)
			}
		}
	}()

	for {
		ev, err := d.ReadEvent()
		if errors.Is(err, midifile.ErrEndOfTrack) {
			return nil
		}
		if err != nil {
			ts.Err = err.Error()
			return err
		}

		ts.Events++
		ts.Ticks += uint64(ev.Delta)
		ts.Kinds[ev.Kind.String()]++

		switch p := ev.Payload.(type) {
		case midifile.Channel:
			channels[p.Channel&0x0F] = true
			if p.Op == midifile.NoteOn && p.Param2 > 0 {
				ts.Notes++
			}
		case midifile.Text:
			if p.Truncated() {
				ts.Truncated++
			}
			switch {
			case ev.Kind == midifile.KindName && ts.Name == "":
				ts.Name = string(p.Data)
			case ev.Kind == midifile.KindInstrument && ts.Instrument == "":
				ts.Instrument = string(p.Data)
			}
		case midifile.SysEx:
			if p.Truncated() {
				ts.Truncated++
			}
		case midifile.Tempo:
			if ts.Tempo == nil {
				ts.Tempo = &p
			}
		case midifile.TimeSignature:
			if ts.Meter == nil {
				ts.Meter = &p
			}
		case midifile.KeySignature:
			if ts.Key == nil {
				ts.Key = &p
			}
		}
	}
}
