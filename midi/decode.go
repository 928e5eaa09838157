// Package midi adapts Standard MIDI Files to the performance encoder's
// input records. All container parsing is delegated to gomidi's smf
// package; only note and tempo events survive decoding.
package midi

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/robz/midi2performance/performance"
)

// ErrNotMetric means the file's time format is SMPTE-based rather than
// ticks per quarter note. Such files cannot feed the tempo map.
var ErrNotMetric = errors.New("time format is not metric")

// Score is one decoded file: everything the encoding core needs and
// nothing else.
type Score struct {
	TicksPerQuarter int
	Tempos          []performance.TempoMarker
	Tracks          [][]performance.RawNoteEvent
}

// Load reads and decodes a Standard MIDI File.
func Load(path string) (*Score, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return FromSMF(s)
}

// FromSMF decodes an already-parsed SMF. Tempo changes are collected from
// every track and sorted by tick; note-ons with velocity zero arrive as
// note-offs (gomidi folds that convention for us). Channels are not
// separated. Other message kinds are dropped.
func FromSMF(s *smf.SMF) (*Score, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotMetric, s.TimeFormat)
	}

	score := &Score{
		TicksPerQuarter: int(ticks),
		Tracks:          make([][]performance.RawNoteEvent, len(s.Tracks)),
	}

	for ti, track := range s.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta

			var ch, key, vel uint8
			var bpm float64
			switch {
			case ev.Message.GetNoteStart(&ch, &key, &vel):
				score.Tracks[ti] = append(score.Tracks[ti], performance.RawNoteEvent{
					Tick:     tick,
					Kind:     performance.NoteOn,
					Pitch:    key,
					Velocity: vel,
				})
			case ev.Message.GetNoteEnd(&ch, &key):
				score.Tracks[ti] = append(score.Tracks[ti], performance.RawNoteEvent{
					Tick:  tick,
					Kind:  performance.NoteOff,
					Pitch: key,
				})
			case ev.Message.GetMetaTempo(&bpm):
				if bpm <= 0 {
					continue
				}
				score.Tempos = append(score.Tempos, performance.TempoMarker{
					Tick:             tick,
					MicrosPerQuarter: uint32(math.Round(60000000 / bpm)),
				})
			}
		}
	}

	// Tempo events can live on any track; the tempo map wants one
	// tick-ordered list.
	sort.SliceStable(score.Tempos, func(i, j int) bool {
		return score.Tempos[i].Tick < score.Tempos[j].Tick
	})

	return score, nil
}
