package testutil

import "fmt"

// FillSequence fills chunk with the wrapping counter pattern starting at
// start. Callers advance their own counter by the number of bytes a fifo
// actually accepted, so a short write resumes the pattern seamlessly.
func FillSequence(chunk []byte, start byte) {
	for i := range chunk {
		chunk[i] = start
		start++
	}
}

// ByteSequence returns n counter-pattern bytes starting at start.
func ByteSequence(start byte, n int) []byte {
	out := make([]byte, n)
	FillSequence(out, start)
	return out
}

// VerifySequence checks that got continues the counter pattern at want and
// returns the value expected after it. The error names the offset within
// got; callers add their absolute position.
func VerifySequence(got []byte, want byte) (byte, error) {
	for i, b := range got {
		if b != want {
			return want, fmt.Errorf("sequence byte %d: expected %d, got %d", i, want, b)
		}
		want++
	}
	return want, nil
}

// RecordLen returns the length of record corpus entry i, always in
// [1, maxLen]. The stride is coprime with small power-of-two capacities so
// successive records land on every ring offset.
func RecordLen(i, maxLen int) int {
	return 1 + (i*7)%maxLen
}

// Record returns corpus record i: RecordLen(i, maxLen) bytes where byte j
// is byte(i+j).
func Record(i, maxLen int) []byte {
	rec := make([]byte, RecordLen(i, maxLen))
	for j := range rec {
		rec[j] = byte(i + j)
	}
	return rec
}

// VerifyRecord checks that got matches corpus record i exactly.
func VerifyRecord(i, maxLen int, got []byte) error {
	if want := RecordLen(i, maxLen); len(got) != want {
		return fmt.Errorf("record %d: expected length %d, got %d", i, want, len(got))
	}
	for j, b := range got {
		if b != byte(i+j) {
			return fmt.Errorf("record %d byte %d: expected %d, got %d", i, j, byte(i+j), b)
		}
	}
	return nil
}
