package performance

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedTempoMap means the tempo markers or resolution handed to
// NewTempoMap cannot describe a monotonic tick-to-time mapping. It aborts
// the whole file's conversion.
var ErrMalformedTempoMap = errors.New("malformed tempo map")

// defaultMicrosPerQuarter is the MIDI-standard default tempo (120 BPM),
// assumed at tick 0 when a file declares no tempo there.
const defaultMicrosPerQuarter = 500000

// TempoMarker is a tempo change at an absolute tick position, as decoded
// from the file's meta events.
type TempoMarker struct {
	Tick             uint32
	MicrosPerQuarter uint32
}

type tempoSegment struct {
	startTick uint32
	startMs   float64 // elapsed ms at startTick
	microsPQ  uint32
}

// TempoMap converts absolute tick positions to elapsed milliseconds. The
// mapping is piecewise linear: within a segment, ms accrue at that segment's
// tempo; across segments they accumulate.
type TempoMap struct {
	ticksPerQuarter int
	segments        []tempoSegment
}

// NewTempoMap builds a TempoMap from tick-ordered markers. Markers out of
// order or a non-positive resolution yield ErrMalformedTempoMap. Two markers
// on the same tick are tolerated; the later one wins.
func NewTempoMap(markers []TempoMarker, ticksPerQuarter int) (*TempoMap, error) {
	if ticksPerQuarter <= 0 {
		return nil, fmt.Errorf("%w: ticks per quarter note %d", ErrMalformedTempoMap, ticksPerQuarter)
	}

	m := &TempoMap{
		ticksPerQuarter: ticksPerQuarter,
		segments: []tempoSegment{
			{startTick: 0, startMs: 0, microsPQ: defaultMicrosPerQuarter},
		},
	}

	for i, mk := range markers {
		if i > 0 && mk.Tick < markers[i-1].Tick {
			return nil, fmt.Errorf("%w: marker at tick %d after tick %d",
				ErrMalformedTempoMap, mk.Tick, markers[i-1].Tick)
		}
		if mk.MicrosPerQuarter == 0 {
			return nil, fmt.Errorf("%w: zero tempo at tick %d", ErrMalformedTempoMap, mk.Tick)
		}

		last := &m.segments[len(m.segments)-1]
		if mk.Tick == last.startTick {
			last.microsPQ = mk.MicrosPerQuarter
			continue
		}
		m.segments = append(m.segments, tempoSegment{
			startTick: mk.Tick,
			startMs:   last.startMs + m.segmentMs(last, mk.Tick),
			microsPQ:  mk.MicrosPerQuarter,
		})
	}

	return m, nil
}

func (m *TempoMap) segmentMs(seg *tempoSegment, tick uint32) float64 {
	return float64(tick-seg.startTick) * float64(seg.microsPQ) / float64(m.ticksPerQuarter) / 1000
}

// TicksToMs returns the elapsed milliseconds at an absolute tick position.
// It is monotonic in tick.
func (m *TempoMap) TicksToMs(tick uint32) float64 {
	// Index of the first segment starting after tick; the one before it
	// contains tick. Segment 0 starts at tick 0, so i >= 1.
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].startTick > tick
	})
	seg := &m.segments[i-1]
	return seg.startMs + m.segmentMs(seg, tick)
}
