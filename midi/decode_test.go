package midi

import (
	"errors"
	"reflect"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/robz/midi2performance/performance"
)

func TestFromSMFNotesAndTempo(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(480, gomidi.NoteOff(0, 60))
	tr.Add(0, smf.MetaTempo(240))
	tr.Add(480, gomidi.NoteOn(3, 72, 90))
	tr.Close(0)
	s.Add(tr)

	score, err := FromSMF(s)
	if err != nil {
		t.Fatalf("FromSMF failed: %v", err)
	}

	if score.TicksPerQuarter != 480 {
		t.Errorf("TicksPerQuarter = %d, want 480", score.TicksPerQuarter)
	}

	wantTempos := []performance.TempoMarker{
		{Tick: 0, MicrosPerQuarter: 500000},
		{Tick: 480, MicrosPerQuarter: 250000},
	}
	if !reflect.DeepEqual(score.Tempos, wantTempos) {
		t.Errorf("Tempos = %+v, want %+v", score.Tempos, wantTempos)
	}

	wantNotes := []performance.RawNoteEvent{
		{Tick: 0, Kind: performance.NoteOn, Pitch: 60, Velocity: 100},
		{Tick: 480, Kind: performance.NoteOff, Pitch: 60},
		{Tick: 960, Kind: performance.NoteOn, Pitch: 72, Velocity: 90},
	}
	if len(score.Tracks) != 1 || !reflect.DeepEqual(score.Tracks[0], wantNotes) {
		t.Errorf("Tracks = %+v, want one track %+v", score.Tracks, wantNotes)
	}
}

func TestFromSMFZeroVelocityNoteOn(t *testing.T) {
	// Running-status files end notes with velocity-0 note-ons; those
	// must decode as note-offs.
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)

	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 64, 80))
	tr.Add(96, gomidi.NoteOn(0, 64, 0))
	tr.Close(0)
	s.Add(tr)

	score, err := FromSMF(s)
	if err != nil {
		t.Fatalf("FromSMF failed: %v", err)
	}
	notes := score.Tracks[0]
	if len(notes) != 2 {
		t.Fatalf("decoded %d events, want 2", len(notes))
	}
	if notes[1].Kind != performance.NoteOff || notes[1].Pitch != 64 {
		t.Errorf("velocity-0 note-on decoded as %+v, want note-off 64", notes[1])
	}
}

func TestFromSMFTemposAcrossTracks(t *testing.T) {
	// Format-1 files keep tempo on a conductor track; changes must come
	// back as a single tick-ordered list regardless of which track
	// carries them.
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(100))
	conductor.Add(960, smf.MetaTempo(200))
	conductor.Close(0)
	s.Add(conductor)

	var notes smf.Track
	notes.Add(0, gomidi.NoteOn(0, 60, 64))
	notes.Add(480, smf.MetaTempo(150))
	notes.Add(960, gomidi.NoteOff(0, 60))
	notes.Close(0)
	s.Add(notes)

	score, err := FromSMF(s)
	if err != nil {
		t.Fatalf("FromSMF failed: %v", err)
	}
	if len(score.Tempos) != 3 {
		t.Fatalf("decoded %d tempo markers, want 3", len(score.Tempos))
	}
	for i := 1; i < len(score.Tempos); i++ {
		if score.Tempos[i].Tick < score.Tempos[i-1].Tick {
			t.Errorf("tempo markers out of order: %+v", score.Tempos)
		}
	}
}

func TestFromSMFRejectsSMPTE(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.SMPTE25(40)

	_, err := FromSMF(s)
	if !errors.Is(err, ErrNotMetric) {
		t.Errorf("got error %v, want ErrNotMetric", err)
	}
}
