package convert

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robz/midi2performance/debug"
)

// Result reports one finished file conversion.
type Result struct {
	Input  string // path relative to the batch input root
	Output string // absolute output path
	Tokens int
	Err    error
}

// Batch converts every MIDI file under InputDir, mirroring its directory
// structure under OutputDir. Files convert independently, so Workers of
// them run at once; per-file encoder state is never shared.
type Batch struct {
	InputDir   string
	OutputDir  string
	Workers    int
	Extensions []string // lower-case, with dot
	Options    Options

	results chan Result
}

// NewBatch creates a batch with the given worker count (minimum 1) over
// .mid/.midi files.
func NewBatch(inputDir, outputDir string, workers int, opts Options) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Workers:    workers,
		Extensions: []string{".mid", ".midi"},
		Options:    opts,
		results:    make(chan Result, workers),
	}
}

// Results returns the channel Run reports on. It is closed when the batch
// finishes or is cancelled.
func (b *Batch) Results() <-chan Result {
	return b.results
}

// Scan walks the input tree and returns the relative paths of all files
// the batch will convert, in walk order.
func (b *Batch) Scan() ([]string, error) {
	var files []string
	err := filepath.WalkDir(b.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !b.wantFile(path) {
			return nil
		}
		rel, err := filepath.Rel(b.InputDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (b *Batch) wantFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range b.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Run converts the given files (as returned by Scan), sending one Result
// each and closing the results channel when done. Cancelling the context
// abandons files not yet started; in-flight files finish.
func (b *Batch) Run(ctx context.Context, files []string) {
	jobs := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < b.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range jobs {
				b.results <- b.convertOne(rel)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rel := range files {
			select {
			case jobs <- rel:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(b.results)
}

func (b *Batch) convertOne(rel string) Result {
	in := filepath.Join(b.InputDir, rel)
	// The original file name keeps its extension, matching the input
	// tree one-to-one: "song.mid" becomes "song.mid.npy".
	out := filepath.Join(b.OutputDir, rel+".npy")

	n, err := File(in, out, b.Options)
	if err != nil {
		debug.Log("batch", "%s: %v", rel, err)
	}
	return Result{Input: rel, Output: out, Tokens: n, Err: err}
}
