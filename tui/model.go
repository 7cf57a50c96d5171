package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-smfstream/midifile"
	"go-smfstream/theme"
	"go-smfstream/widgets"
)

type Model struct {
	Name     string
	Decoder  *midifile.Decoder
	Theme    *theme.Theme
	browser  *browser
	quitting bool
	showHelp bool
	height   int
}

func NewModel(name string, dec *midifile.Decoder, th *theme.Theme, historyLines int) Model {
	return Model{
		Name:    name,
		Decoder: dec,
		Theme:   th,
		browser: newBrowser(dec, historyLines),
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "n", " ", "j", "down":
			m.browser.step()

		case "N":
			// Step until an actual event shows up
			for !m.browser.step() && (m.browser.state == stateInTrack || m.browser.state == stateBetween) {
			}

		case "t":
			m.browser.skipTrack()

		case "e":
			m.browser.finishTrack()

		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	b := m.browser

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	if b.state == stateFailed {
		statusStyle = statusStyle.Foreground(m.Theme.Warning())
	}

	header := headerStyle.Render(fmt.Sprintf("%s  %s  tracks:%d  ticks/beat:%d",
		m.Name, m.Decoder.Format(), m.Decoder.TrackCount(), m.Decoder.TicksPerBeat()))

	trackLine := dimStyle.Render("no track open")
	if b.state == stateInTrack {
		trackLine = fmt.Sprintf("track %d  %s", b.track,
			widgets.RenderBudget(m.Decoder.ChunkBytesLeft(), b.chunkLen, 24))
	}

	var pads [16]widgets.Pad
	for ch, level := range b.activity.Level {
		if level == 0 {
			pads[ch] = widgets.Pad{Symbol: m.Theme.Symbols.Empty, Color: m.Theme.RGB(theme.RoleSurface)}
		} else {
			pads[ch] = widgets.Pad{Symbol: m.Theme.Symbols.Solid, Color: m.Theme.RGB(0.3 + 0.7*float64(level)/127)}
		}
	}
	padView := widgets.RenderChannelPads(pads)

	help := dimStyle.Render("n/space:event  N:next event  t:skip track  e:finish track  ?:help  q:quit")
	if m.showHelp {
		help = m.renderHelp()
	}

	// History fills whatever height is left
	fixed := lipgloss.Height(header) + lipgloss.Height(padView) + lipgloss.Height(help) + 6
	rows := max(1, m.height-fixed)
	lines := b.history
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(trackLine)
	out.WriteString("\n\n")
	out.WriteString(padView)
	out.WriteString("\n\n")
	for _, l := range lines {
		style := lipgloss.NewStyle().Foreground(m.Theme.KindColor(l.Kind))
		out.WriteString(style.Render(fmt.Sprintf("%c %s", m.Theme.KindSymbol(l.Kind), l.Text)))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(statusStyle.Render(b.status))
	out.WriteString("\n")
	out.WriteString(help)

	return out.String()
}

var keySections = []widgets.KeySection{
	{
		Title: "Events",
		Keys: []widgets.KeyBinding{
			{Key: "n, space", Desc: "next event in this track"},
			{Key: "N", Desc: "next event, opening chunks as needed"},
		},
	},
	{
		Title: "Tracks",
		Keys: []widgets.KeyBinding{
			{Key: "t", Desc: "skip the rest of the track"},
			{Key: "e", Desc: "decode to the end of the track"},
		},
	},
	{
		Keys: []widgets.KeyBinding{
			{Key: "?", Desc: "toggle this help"},
			{Key: "q", Desc: "quit"},
		},
	},
}

var legend = []struct {
	kind       midifile.Kind
	name, desc string
}{
	{midifile.KindChannel, "Note", "channel voice message"},
	{midifile.KindTempo, "Meta", "tempo, meter, key and other meta events"},
	{midifile.KindText, "Text", "text, names, lyrics, markers"},
	{midifile.KindSysExF0, "SysEx", "system exclusive data"},
	{midifile.KindNoOp, "Skip", "meta event of an unknown type"},
	{midifile.KindEndOfTrack, "End", "end of track"},
	{midifile.KindUnknown, "Error", "chunk skipped or decode failed"},
}

func (m Model) renderHelp() string {
	lines := []string{widgets.RenderKeyHelp(keySections), "", "Legend"}
	for _, l := range legend {
		mark := lipgloss.NewStyle().Foreground(m.Theme.KindColor(l.kind)).Render(string(m.Theme.KindSymbol(l.kind)))
		lines = append(lines, widgets.RenderLegendItem(mark, l.name, l.desc))
	}
	return strings.Join(lines, "\n")
}
