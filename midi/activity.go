package midi

import "go-smfstream/midifile"

// Activity tracks the most recent note velocity on each of the 16 channels,
// fading a little on every step.
type Activity struct {
	Level [16]uint8
	fade  uint8
}

// NewActivity returns a tracker whose levels drop by fade per Step
func NewActivity(fade uint8) *Activity {
	return &Activity{fade: fade}
}

// Apply records a decoded channel message
func (a *Activity) Apply(c midifile.Channel) {
	e, ok := FromChannel(c)
	if !ok || e.Type != NoteOn {
		return
	}
	if e.Velocity > a.Level[e.Channel&0x0F] {
		a.Level[e.Channel&0x0F] = e.Velocity
	}
}

// Step fades every channel
func (a *Activity) Step() {
	for i, l := range a.Level {
		if l > a.fade {
			a.Level[i] = l - a.fade
		} else {
			a.Level[i] = 0
		}
	}
}

// Reset clears all channels
func (a *Activity) Reset() {
	a.Level = [16]uint8{}
}
