package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"go-smfstream/config"
	"go-smfstream/debug"
	"go-smfstream/inspect"
	"go-smfstream/midi"
	"go-smfstream/midifile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

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

	args := os.Args[2:]
	switch os.Args[1] {
	case "header":
		err = withFile(args, func(src midifile.ByteSource) error {
			return printHeader(os.Stdout, src, cfg.DecoderOptions())
		})
	case "chunks":
		err = withFile(args, func(src midifile.ByteSource) error {
			return listChunks(os.Stdout, src, cfg.DecoderOptions())
		})
	case "dump":
		err = dumpCmd(args, cfg)
	case "stats":
		err = statsCmd(args, cfg)
	case "ports":
		err = listPorts()
	case "sysex":
		err = sysexCmd(args, cfg)
	case "config":
		err = configCmd(args, cfg)
	default:
		usage()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Standard MIDI File tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  header <file>                  - Show format, track count, ticks per beat")
	fmt.Println("  chunks <file>                  - List chunks without decoding events")
	fmt.Println("  dump [-cap N] [-gomidi] <file> - Print every event")
	fmt.Println("  stats [-json] <file>           - Summarize each track")
	fmt.Println("  ports                          - List MIDI output ports")
	fmt.Println("  sysex [-gap ms] <file> [port]  - Send the file's SysEx events to an output")
	fmt.Println("  config [-save]                 - Show the config, or write it with defaults filled in")
}

// withFile opens the single file argument as a byte source
func withFile(args []string, fn func(midifile.ByteSource) error) error {
	if len(args) != 1 {
		return errors.New("expected one file argument")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(bufio.NewReader(f))
}

func dumpCmd(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	capacity := fs.Int("cap", cfg.Decoder.BufferCapacity, "text/sysex buffer capacity, terminator included")
	wire := fs.Bool("gomidi", false, "show channel and sysex events as MIDI wire messages")
	fs.Parse(args)

	opts := cfg.DecoderOptions()
	opts.BufferCapacity = *capacity
	return withFile(fs.Args(), func(src midifile.ByteSource) error {
		return dump(os.Stdout, src, opts, *wire)
	})
}

func statsCmd(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print JSON")
	fs.Parse(args)

	return withFile(fs.Args(), func(src midifile.ByteSource) error {
		s, err := inspect.Summarize(src, cfg.DecoderOptions())
		if s == nil {
			return err
		}
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(s); encErr != nil {
				return encErr
			}
		} else {
			printSummary(os.Stdout, s)
		}
		return err
	})
}

func printHeader(w io.Writer, src midifile.ByteSource, opts midifile.Options) error {
	d, err := midifile.Open(src, opts)
	if err != nil {
		return err
	}
	defer d.End()
	fmt.Fprintf(w, "format:         %d (%s)\n", int(d.Format()), d.Format())
	fmt.Fprintf(w, "tracks:         %d\n", d.TrackCount())
	fmt.Fprintf(w, "ticks per beat: %d\n", d.TicksPerBeat())
	return nil
}

func listChunks(w io.Writer, src midifile.ByteSource, opts midifile.Options) error {
	d, err := midifile.Open(src, opts)
	if err != nil {
		return err
	}
	defer d.End()

	fmt.Fprintf(w, "%-4s MThd %8d\n", "0", 6)
	for i := 1; ; i++ {
		_, err := d.OpenChunk()
		if errors.Is(err, midifile.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		sig := d.ChunkSignature()
		fmt.Fprintf(w, "%-4d %s %8d\n", i, sig[:], d.ChunkBytesLeft())
		if err := d.SkipChunk(); err != nil {
			return err
		}
	}
}

func dump(w io.Writer, src midifile.ByteSource, opts midifile.Options, wire bool) error {
	d, err := midifile.Open(src, opts)
	if err != nil {
		return err
	}
	defer d.End()
	fmt.Fprintf(w, "# %s\n", d)

	for track := 0; ; {
		kind, err := d.OpenChunk()
		if errors.Is(err, midifile.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		if kind != midifile.ChunkTrack {
			sig := d.ChunkSignature()
			fmt.Fprintf(w, "# skipping %s chunk, %d bytes\n", sig[:], d.ChunkBytesLeft())
			if err := d.SkipChunk(); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(w, "# track %d, %d bytes\n", track, d.ChunkBytesLeft())
		var ticks uint64
		for {
			ev, err := d.ReadEvent()
			if errors.Is(err, midifile.ErrEndOfTrack) {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "track %d", track)
			}
			ticks += uint64(ev.Delta)
			fmt.Fprintf(w, "%8d %-14s %v", ticks, ev.Kind, payloadString(ev))
			if wire {
				if msg, ok := midi.ToMessage(ev); ok {
					fmt.Fprintf(w, "  [% X] %s", []byte(msg), msg)
				}
			}
			fmt.Fprintln(w)
		}
		track++
	}
}

func payloadString(ev midifile.Event) string {
	switch p := ev.Payload.(type) {
	case nil:
		return ""
	case midifile.Tempo:
		return fmt.Sprintf("%d us/beat (%.2f bpm)", p.MicrosecondsPerBeat, p.BPM())
	case midifile.TimeSignature:
		return fmt.Sprintf("%d/%d metronome=%d 32nds=%d", p.Numerator, p.Denominator, p.Metronome, p.ThirtySeconds)
	case midifile.KeySignature:
		return fmt.Sprintf("sharps=%d minor=%t", p.Sharps, p.Minor)
	default:
		return fmt.Sprint(p)
	}
}

func printSummary(w io.Writer, s *inspect.Summary) {
	fmt.Fprintf(w, "format %s, %d tracks declared, %d ticks per beat\n", s.Format, s.TrackCount, s.TicksPerBeat)
	if s.UnknownChunks > 0 {
		fmt.Fprintf(w, "%d unknown chunks skipped\n", s.UnknownChunks)
	}
	for _, t := range s.Tracks {
		name := t.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "track %d %q: %d events, %d ticks, %d notes, channels %v\n",
			t.Index, name, t.Events, t.Ticks, t.Notes, t.Channels)
		if t.Tempo != nil {
			fmt.Fprintf(w, "  tempo %.2f bpm\n", t.Tempo.BPM())
		}
		if t.Meter != nil {
			fmt.Fprintf(w, "  meter %d/%d\n", t.Meter.Numerator, t.Meter.Denominator)
		}
		if t.Truncated > 0 {
			fmt.Fprintf(w, "  %d payloads truncated\n", t.Truncated)
		}
		if t.Err != "" {
			fmt.Fprintf(w, "  error: %s\n", t.Err)
		}
	}
}

func listPorts() error {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	outs, err := midi.OutPorts()
	if errors.Is(err, midi.ErrScanTimeout) {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return nil
	}
	if err != nil {
		return err
	}
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

func sysexCmd(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("sysex", flag.ExitOnError)
	gap := fs.Int("gap", 50, "milliseconds between messages")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		return errors.New("usage: sysex [-gap ms] <file> [port]")
	}
	portName := cfg.Output.PortName
	if len(rest) == 2 {
		portName = rest[1]
	}
	if portName == "" {
		return errors.New("no output port given and none configured")
	}

	out, err := midi.FindOutPort(portName)
	if err != nil {
		return err
	}
	fmt.Printf("Using output: %s\n", out.String())

	sender, err := midi.NewSysExSender(out, time.Duration(*gap)*time.Millisecond)
	if err != nil {
		return err
	}

	return withFile(rest[:1], func(src midifile.ByteSource) error {
		sent, err := sendSysEx(src, cfg.DecoderOptions(), sender)
		fmt.Printf("Sent %d SysEx messages\n", sent)
		return err
	})
}

func configCmd(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "write the config file")
	fs.Parse(args)

	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if *save {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	fmt.Printf("# %s\n", path)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

type eventSender interface {
	Send(midifile.Event) (bool, error)
}

func sendSysEx(src midifile.ByteSource, opts midifile.Options, sender eventSender) (int, error) {
	d, err := midifile.Open(src, opts)
	if err != nil {
		return 0, err
	}
	defer d.End()

	sent := 0
	for {
		kind, err := d.OpenChunk()
		if errors.Is(err, midifile.ErrEndOfStream) {
			return sent, nil
		}
		if err != nil {
			return sent, err
		}
		if kind != midifile.ChunkTrack {
			if err := d.SkipChunk(); err != nil {
				return sent, err
			}
			continue
		}
		for {
			ev, err := d.ReadEvent()
			if errors.Is(err, midifile.ErrEndOfTrack) {
				break
			}
			if err != nil {
				return sent, err
			}
			ok, err := sender.Send(ev)
			if err != nil {
				return sent, err
			}
			if ok {
				sent++
			}
		}
	}
}
