package midi

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-smfstream/midifile"
)

// scanTimeout bounds port enumeration (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the driver doesn't list ports in time
var ErrScanTimeout = errors.New("timed out listing MIDI ports")

// OutPorts lists the MIDI output ports
func OutPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(scanTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, ErrScanTimeout
	}
}

// MatchPort returns the index of the first name containing substr, ignoring case
func MatchPort(names []string, substr string) int {
	substr = strings.ToLower(substr)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), substr) {
			return i
		}
	}
	return -1
}

// FindOutPort returns the first output port whose name contains substr
func FindOutPort(substr string) (drivers.Out, error) {
	outs, err := OutPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, p := range outs {
		names[i] = p.String()
	}
	i := MatchPort(names, substr)
	if i < 0 {
		return nil, errors.Errorf("no MIDI output matching %q", substr)
	}
	return outs[i], nil
}

// SysExSender transmits the system exclusive events of a file to a port
type SysExSender struct {
	send  func(gomidi.Message) error
	gap   time.Duration
	sleep func(time.Duration)
}

// NewSysExSender opens out for sending. gap is the pause between messages,
// which slow receivers need to digest a dump.
func NewSysExSender(out drivers.Out, gap time.Duration) (*SysExSender, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, errors.Wrap(err, "open output")
	}
	return &SysExSender{send: send, gap: gap, sleep: time.Sleep}, nil
}

// Send transmits ev if it's an F0 sysex event; other events are ignored.
// It reports whether a message went out.
func (s *SysExSender) Send(ev midifile.Event) (bool, error) {
	sx, ok := ev.Payload.(midifile.SysEx)
	if !ok || ev.Kind != midifile.KindSysExF0 {
		return false, nil
	}
	msg, err := SysExMessage(sx)
	if err != nil {
		return false, err
	}
	if err := s.send(msg); err != nil {
		return false, errors.Wrap(err, "send sysex")
	}
	if s.gap > 0 {
		s.sleep(s.gap)
	}
	return true, nil
}
