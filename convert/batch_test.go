package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/robz/midi2performance/performance"
	"github.com/robz/midi2performance/tensor"
)

// writeTestMIDI writes a one-track file with a single quarter note.
func writeTestMIDI(t *testing.T, path string, pitch, velocity uint8) {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, pitch, velocity))
	tr.Add(480, gomidi.NoteOff(0, pitch))
	tr.Close(0)
	s.Add(tr)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestFileConversion(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "note.mid")
	out := filepath.Join(dir, "note.npy")
	writeTestMIDI(t, in, 60, 100)

	n, err := File(in, out, Options{})
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	tokens, err := tensor.Read(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(tokens) != n {
		t.Errorf("File reported %d tokens, output holds %d", n, len(tokens))
	}

	// Velocity 100 quantizes to 25, the quarter note at 120 BPM is
	// 500ms, which is time-shift bucket token 305.
	want := []int16{performance.VelocityBase + 25, 60, 305, performance.NoteOffBase + 60}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", tokens, want)
		}
	}
}

func TestBatchMirrorsTree(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	writeTestMIDI(t, filepath.Join(inDir, "a.mid"), 60, 100)
	writeTestMIDI(t, filepath.Join(inDir, "sub", "b.midi"), 64, 80)
	// A file that is not MIDI at all: reported as failed, batch continues.
	if err := os.WriteFile(filepath.Join(inDir, "broken.mid"), []byte("not a midi file"), 0644); err != nil {
		t.Fatal(err)
	}
	// Not a MIDI extension: skipped entirely.
	if err := os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("README"), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBatch(inDir, outDir, 2, Options{})
	files, err := b.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Scan found %v, want 3 MIDI files", files)
	}

	go b.Run(context.Background(), files)

	var ok, failed int
	for res := range b.Results() {
		if res.Err != nil {
			failed++
			if _, err := os.Stat(res.Output); !os.IsNotExist(err) {
				t.Errorf("failed conversion left output %s", res.Output)
			}
			continue
		}
		ok++
		if _, err := os.Stat(res.Output); err != nil {
			t.Errorf("missing output %s: %v", res.Output, err)
		}
	}
	if ok != 2 || failed != 1 {
		t.Errorf("batch finished with ok=%d failed=%d, want 2/1", ok, failed)
	}

	// The tree mirrors the input, extensions intact.
	if _, err := os.Stat(filepath.Join(outDir, "sub", "b.midi.npy")); err != nil {
		t.Errorf("nested output not mirrored: %v", err)
	}
}

func TestBatchCancellation(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	for _, name := range []string{"a.mid", "b.mid", "c.mid"} {
		writeTestMIDI(t, filepath.Join(inDir, name), 60, 100)
	}

	b := NewBatch(inDir, outDir, 1, Options{})
	files, err := b.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // nothing queued after this
	go b.Run(ctx, files)

	done := 0
	for range b.Results() {
		done++
	}
	if done == len(files) {
		t.Logf("all files finished before cancellation took effect")
	}
}
