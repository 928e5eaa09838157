// Package performance turns merged, millisecond-stamped note events into the
// flat token sequence used to train performance models. It is pure: no I/O,
// no per-file state outside the values passed in and returned.
package performance

import "fmt"

// Token vocabulary: four disjoint integer ranges packed into [0,387].
const (
	NoteOnBase    int16 = 0   // 0-127, token = pitch
	NoteOffBase   int16 = 128 // 128-255, token = 128 + pitch
	TimeShiftBase int16 = 256 // 256-355, 10ms buckets, up to 1s per token
	VelocityBase  int16 = 356 // 356-387, velocity quantized by 4
	VocabSize     int16 = 388
)

const (
	bucketMs        = 10  // width of one time-shift bucket
	maxShiftBuckets = 100 // buckets per token, so one token spans at most 1s
)

// Kind distinguishes note events. NoteOff sorts before NoteOn so that a note
// released and re-struck at the same instant never appears to overlap itself.
type Kind int

const (
	NoteOff Kind = iota
	NoteOn
)

func (k Kind) String() string {
	if k == NoteOn {
		return "note-on"
	}
	return "note-off"
}

// TokenKind names the vocabulary range a token belongs to.
type TokenKind int

const (
	TokenNoteOn TokenKind = iota
	TokenNoteOff
	TokenTimeShift
	TokenVelocity
)

// SplitToken returns the range a token falls in and its offset within that
// range: the pitch for note tokens, the bucket for time shifts, the
// quantized velocity for velocity tokens.
func SplitToken(t int16) (TokenKind, int, error) {
	switch {
	case t >= NoteOnBase && t < NoteOffBase:
		return TokenNoteOn, int(t - NoteOnBase), nil
	case t >= NoteOffBase && t < TimeShiftBase:
		return TokenNoteOff, int(t - NoteOffBase), nil
	case t >= TimeShiftBase && t < VelocityBase:
		return TokenTimeShift, int(t - TimeShiftBase), nil
	case t >= VelocityBase && t < VocabSize:
		return TokenVelocity, int(t - VelocityBase), nil
	default:
		return 0, 0, fmt.Errorf("token %d outside vocabulary [0,%d)", t, VocabSize)
	}
}

// TimeShiftMs decodes a TIME_SHIFT token to milliseconds. Buckets start at
// one unit: token 256 decodes to 10ms, token 355 to 1000ms.
func TimeShiftMs(t int16) int {
	return (int(t-TimeShiftBase) + 1) * bucketMs
}
