package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"

	"github.com/robz/midi2performance/config"
	"github.com/robz/midi2performance/convert"
	"github.com/robz/midi2performance/debug"
	"github.com/robz/midi2performance/performance"
	"github.com/robz/midi2performance/tui"
)

func main() {
	workers := flag.Int("workers", 0, "parallel conversions (0 = from config)")
	plain := flag.Bool("plain", false, "line output instead of the TUI")
	debugLog := flag.Bool("debug", false, "write ~/.config/midi2performance/debug.log")
	tieBreak := flag.String("tie-break", "", `simultaneous-event order: "off-first" or "on-first"`)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: midi2performance [flags] <input-dir> <output-dir>\n\n")
		fmt.Fprintf(os.Stderr, "Converts every MIDI file under <input-dir> into a .npy token tensor\nunder <output-dir>, mirroring the directory structure.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		charmlog.Fatal("could not load config", "err", err)
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *tieBreak != "" {
		cfg.Encode.TieBreak = config.TieBreakMode(*tieBreak)
	}

	if *debugLog {
		if err := debug.Enable(); err != nil {
			charmlog.Warn("debug log unavailable", "err", err)
		}
		defer debug.Disable()
	}

	opts := convert.Options{TieBreak: performance.OffBeforeOn}
	switch cfg.Encode.TieBreak {
	case config.TieBreakOffFirst, "":
	case config.TieBreakOnFirst:
		opts.TieBreak = performance.OnBeforeOff
	default:
		charmlog.Fatal("unknown tie-break mode", "mode", cfg.Encode.TieBreak)
	}

	batch := convert.NewBatch(flag.Arg(0), flag.Arg(1), cfg.Batch.Workers, opts)
	if len(cfg.Batch.Extensions) > 0 {
		batch.Extensions = cfg.Batch.Extensions
	}

	files, err := batch.Scan()
	if err != nil {
		charmlog.Fatal("could not scan input directory", "dir", flag.Arg(0), "err", err)
	}
	if len(files) == 0 {
		charmlog.Info("no MIDI files found", "dir", flag.Arg(0))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go batch.Run(ctx, files)

	failed := 0
	if *plain || cfg.UI.Plain {
		failed = runPlain(batch)
	} else {
		m := tui.NewModel(len(files), batch.Results())
		final, err := tea.NewProgram(m).Run()
		if err != nil {
			charmlog.Fatal("ui error", "err", err)
		}
		failed = final.(tui.Model).Failed()
	}

	if failed > 0 {
		charmlog.Error("finished with failures", "files", len(files), "failed", failed)
		os.Exit(1)
	}
}

func runPlain(batch *convert.Batch) int {
	failed := 0
	for res := range batch.Results() {
		if res.Err != nil {
			failed++
			charmlog.Error("conversion failed", "file", res.Input, "err", res.Err)
			continue
		}
		charmlog.Info("converted", "file", res.Input, "tokens", res.Tokens)
	}
	return failed
}
