// Package convert wires the decoder, the encoding core, and the tensor
// writer into per-file conversions and parallel batch runs.
package convert

import (
	"fmt"

	"github.com/robz/midi2performance/debug"
	"github.com/robz/midi2performance/midi"
	"github.com/robz/midi2performance/performance"
	"github.com/robz/midi2performance/tensor"
)

// Options control one conversion. The zero value is the default encoding
// (note-off before note-on on ties).
type Options struct {
	TieBreak performance.TieBreak
}

// File converts a single MIDI file into a token tensor at outPath and
// returns the token count. The token sequence is fully materialized before
// the writer runs, so a failed conversion leaves no output behind.
func File(inPath, outPath string, opts Options) (int, error) {
	score, err := midi.Load(inPath)
	if err != nil {
		return 0, err
	}

	tm, err := performance.NewTempoMap(score.Tempos, score.TicksPerQuarter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", inPath, err)
	}

	events := performance.Merge(score.Tracks, tm, opts.TieBreak)
	logAnomalies(inPath, score.Tracks)

	tokens, err := performance.Encode(events)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", inPath, err)
	}

	if err := tensor.Write(outPath, tokens); err != nil {
		return 0, err
	}
	return len(tokens), nil
}

// logAnomalies reports unmatched note-offs and overlapping note-ons to the
// debug log. They are data quirks, not errors: the encoder keeps them so
// the token stream stays aligned with any paired metadata.
func logAnomalies(path string, tracks [][]performance.RawNoteEvent) {
	unmatched, doubled := 0, 0
	for _, track := range tracks {
		held := make(map[uint8]int)
		for _, ev := range track {
			if ev.Kind == performance.NoteOn {
				held[ev.Pitch]++
				if held[ev.Pitch] > 1 {
					doubled++
				}
			} else if held[ev.Pitch] == 0 {
				unmatched++
			} else {
				held[ev.Pitch]--
			}
		}
	}
	if unmatched > 0 || doubled > 0 {
		debug.Log("convert", "%s: %d unmatched note-offs, %d overlapping note-ons (kept)",
			path, unmatched, doubled)
	}
}
