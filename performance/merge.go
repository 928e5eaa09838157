package performance

import "sort"

// RawNoteEvent is a decoded note event at an absolute tick position within
// one track. The track index is the position of the containing slice in the
// [][]RawNoteEvent handed to Merge.
type RawNoteEvent struct {
	Tick     uint32
	Kind     Kind
	Pitch    uint8
	Velocity uint8
}

// TimedEvent is a RawNoteEvent placed on the real-time axis. Track is kept
// for the deterministic tie-break.
type TimedEvent struct {
	TimeMs   float64
	Kind     Kind
	Pitch    uint8
	Velocity uint8
	Track    int
}

// TieBreak picks the order of events that land on the same millisecond.
// The divisor-and-ordering conventions here were inferred from performance
// RNN practice, so the choice is explicit rather than baked in.
type TieBreak int

const (
	// OffBeforeOn releases a note before any note struck at the same
	// instant, so a re-struck pitch never overlaps itself. This is the
	// default.
	OffBeforeOn TieBreak = iota
	// OnBeforeOff is the opposite convention.
	OnBeforeOff
)

// Merge flattens per-track event sequences (each individually tick-ordered)
// into one sequence globally ordered by milliseconds. Ties are broken by tb,
// then ascending pitch, then track index. Nothing is dropped: unmatched
// note-offs and overlapping note-ons pass through untouched, and the result
// length is the sum of the input lengths.
func Merge(tracks [][]RawNoteEvent, tm *TempoMap, tb TieBreak) []TimedEvent {
	n := 0
	for _, t := range tracks {
		n += len(t)
	}
	merged := make([]TimedEvent, 0, n)
	for ti, track := range tracks {
		for _, ev := range track {
			merged = append(merged, TimedEvent{
				TimeMs:   tm.TicksToMs(ev.Tick),
				Kind:     ev.Kind,
				Pitch:    ev.Pitch,
				Velocity: ev.Velocity,
				Track:    ti,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := &merged[i], &merged[j]
		if a.TimeMs != b.TimeMs {
			return a.TimeMs < b.TimeMs
		}
		if a.Kind != b.Kind {
			if tb == OnBeforeOff {
				return a.Kind == NoteOn
			}
			return a.Kind == NoteOff
		}
		if a.Pitch != b.Pitch {
			return a.Pitch < b.Pitch
		}
		return a.Track < b.Track
	})

	return merged
}
