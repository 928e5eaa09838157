package performance

import (
	"errors"
	"fmt"
)

// ErrVelocityOutOfRange means a note-on velocity quantized outside [0,31].
// Unreachable for valid MIDI velocities 0-127; it aborts the file.
var ErrVelocityOutOfRange = errors.New("velocity out of range")

// encoderState is the running state threaded through one encoding pass.
// A fresh one is built per Encode call, so nothing leaks between files.
type encoderState struct {
	lastTimeMs   float64
	lastVelocity int // quantized, -1 until the first note-on
}

// Encode converts a merged, time-ordered event sequence into tokens.
//
// For each event it emits, in order: TIME_SHIFT tokens covering the gap
// since the previous event (one 355 per full second, then a single
// remainder bucket, nothing at all for gaps under 10ms), a VELOCITY token
// when a note-on's quantized velocity differs from the last one emitted,
// and finally the note token itself.
func Encode(events []TimedEvent) ([]int16, error) {
	st := encoderState{lastVelocity: -1}
	tokens := make([]int16, 0, 2*len(events))

	for _, ev := range events {
		gap := ev.TimeMs - st.lastTimeMs
		if gap < 0 {
			panic(fmt.Sprintf("performance: events out of order (%.3fms after %.3fms)",
				ev.TimeMs, st.lastTimeMs))
		}
		tokens = appendTimeShift(tokens, gap)
		st.lastTimeMs = ev.TimeMs

		if ev.Kind == NoteOn {
			q := int(ev.Velocity) / 4
			if q < 0 || q > 31 {
				return nil, fmt.Errorf("%w: velocity %d", ErrVelocityOutOfRange, ev.Velocity)
			}
			if q != st.lastVelocity {
				tokens = append(tokens, VelocityBase+int16(q))
				st.lastVelocity = q
			}
			tokens = append(tokens, NoteOnBase+int16(ev.Pitch))
		} else {
			tokens = append(tokens, NoteOffBase+int16(ev.Pitch))
		}
	}

	return tokens, nil
}

// appendTimeShift splits a gap into TIME_SHIFT tokens. Bucket values are
// shifted down by one so that the inverse is (token - 256 + 1) * 10: a full
// second is token 355, a 450ms remainder token 300, and a gap that rounds
// down to zero emits nothing.
func appendTimeShift(tokens []int16, gapMs float64) []int16 {
	for gapMs >= maxShiftBuckets*bucketMs {
		tokens = append(tokens, TimeShiftBase+maxShiftBuckets-1)
		gapMs -= maxShiftBuckets * bucketMs
	}
	if b := int(gapMs) / bucketMs; b > 0 {
		tokens = append(tokens, TimeShiftBase+int16(b)-1)
	}
	return tokens
}
