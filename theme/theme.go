package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-smfstream/midifile"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Channel activity pads
	Solid rune // ■ channel sounding
	Empty rune // □ channel silent

	// Event list markers
	Note  rune // ● channel voice message
	Meta  rune // ◆ meta event
	Text  rune // ¶ text-shaped meta event
	SysEx rune // ▤ system exclusive
	End   rune // ⏹ end of track
	Skip  rune // · ignored meta event
	Error rune // ✗ decode error
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			Note:  '●',
			Meta:  '◆',
			Text:  '¶',
			SysEx: '▤',
			End:   '⏹',
			Skip:  '·',
			Error: '✗',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// RGB returns raw RGB for any normalized value (for activity pads)
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// KindSymbol picks the list marker for an event kind
func (t *Theme) KindSymbol(k midifile.Kind) rune {
	switch {
	case k == midifile.KindChannel:
		return t.Symbols.Note
	case k.IsText():
		return t.Symbols.Text
	case k == midifile.KindSysExF0, k == midifile.KindSysExEscape:
		return t.Symbols.SysEx
	case k == midifile.KindEnd, k == midifile.KindEndOfTrack:
		return t.Symbols.End
	case k == midifile.KindNoOp:
		return t.Symbols.Skip
	case k == midifile.KindUnknown:
		return t.Symbols.Error
	default:
		return t.Symbols.Meta
	}
}

// KindColor picks the list color for an event kind
func (t *Theme) KindColor(k midifile.Kind) lipgloss.Color {
	switch {
	case k == midifile.KindChannel:
		return t.FG()
	case k.IsText():
		return t.Success()
	case k == midifile.KindSysExF0, k == midifile.KindSysExEscape:
		return t.Active()
	case k == midifile.KindUnknown:
		return t.Warning()
	case k == midifile.KindNoOp, k == midifile.KindEnd:
		return t.Muted()
	default:
		return t.Accent()
	}
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
