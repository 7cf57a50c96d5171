package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pad is one activity pad: its glyph and colour
type Pad struct {
	Symbol rune
	Color  [3]uint8
}

// RenderPad renders a single colored pad
func RenderPad(p Pad) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(p.Color)))
	return style.Render(string(p.Symbol))
}

// RenderPadRow renders a row of pads with spacing
func RenderPadRow(pads []Pad) string {
	var out strings.Builder
	for i, p := range pads {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(p))
	}
	return out.String()
}

// RenderChannelPads renders 16 channel pads under a 0-f ruler
func RenderChannelPads(pads [16]Pad) string {
	var ruler strings.Builder
	for ch := 0; ch < 16; ch++ {
		if ch > 0 {
			ruler.WriteString(" ")
		}
		ruler.WriteString(fmt.Sprintf("%x", ch))
	}
	return ruler.String() + "\n" + RenderPadRow(pads[:])
}

// RenderLegendItem renders a single legend item: "● Name - description".
// mark is drawn as given, so it may carry its own styling.
func RenderLegendItem(mark, name, desc string) string {
	return fmt.Sprintf("  %s %-8s - %s", mark, name, desc)
}

// RenderBudget renders how much of a chunk has been consumed as a bar of
// the given width: "[#####.....] 50/100"
func RenderBudget(left, total int64, width int) string {
	if total <= 0 || left < 0 {
		return fmt.Sprintf("[%s] -", strings.Repeat(".", width))
	}
	used := total - left
	filled := int(used * int64(width) / total)
	return fmt.Sprintf("[%s%s] %d/%d", strings.Repeat("#", filled), strings.Repeat(".", width-filled), used, total)
}

// RenderHex renders up to limit bytes as hex, marking anything cut off
func RenderHex(data []byte, limit int) string {
	if len(data) <= limit {
		return fmt.Sprintf("% X", data)
	}
	return fmt.Sprintf("% X …(+%d)", data[:limit], len(data)-limit)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
