package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"go-smfstream/config"
	"go-smfstream/debug"
	"go-smfstream/midifile"
	"go-smfstream/theme"
	"go-smfstream/tui"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: go-smfstream <file.mid>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Decoder.Debug || cfg.Decoder.Verbose {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Error enabling debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	// Load theme
	palette, err := theme.LoadOrDefault(cfg.Viewer.Palette)
	if err != nil {
		fmt.Printf("Error loading palette: %v\n", err)
		os.Exit(1)
	}
	th := theme.New(palette)

	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	dec, err := midifile.Open(bufio.NewReader(f), cfg.DecoderOptions())
	if err != nil {
		fmt.Printf("Error: %s: %v\n", path, err)
		os.Exit(1)
	}
	defer dec.End()

	m := tui.NewModel(filepath.Base(path), dec, th, cfg.HistoryLines())
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
