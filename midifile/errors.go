package midifile

import "github.com/pkg/errors"

// Decode outcomes. ErrEndOfStream and ErrEndOfTrack are the normal way a
// file and a track finish; everything else means the current track (and
// usually the rest of the file) can't be trusted.
var (
	ErrEndOfStream             = errors.New("end of stream")
	ErrEndOfTrack              = errors.New("end of track")
	ErrMalformedHeader         = errors.New("malformed header")
	ErrMalformedChunk          = errors.New("malformed chunk")
	ErrMalformedEvent          = errors.New("malformed event")
	ErrTruncated               = errors.New("truncated")
	ErrUnsupportedHeaderFormat = errors.New("unsupported header format")
)

var errNotOpen = errors.New("decoder is not open")

// IsEnd reports whether err is one of the two expected termination
// outcomes rather than a decode failure.
func IsEnd(err error) bool {
	return errors.Is(err, ErrEndOfStream) || errors.Is(err, ErrEndOfTrack)
}
