package weather

import "errors"

// BufferSize is the capacity of the sentence buffer.
const BufferSize = 64

// StartDelimiter opens every sentence.
const StartDelimiter = '$'

// ErrOverflow is returned by Feed when a sentence outgrows the buffer. The
// partial sentence is dropped and input is skipped up to the next '$'.
var ErrOverflow = errors.New("weather: sentence exceeds buffer")

// Stats counts assembler activity since construction.
type Stats struct {
	Sentences uint64
	Overflows uint64
}

// Assembler rebuilds delimited sentences from a byte stream.
//
// A sentence is only known to be complete when the next '$' arrives, so the
// final sentence of a stream that stops is never returned.
type Assembler struct {
	buf    [BufferSize]byte
	n      int
	out    [BufferSize]byte
	resync bool
	stats  Stats
}

// Feed consumes one byte. When ch is a '$' that closes a buffered sentence,
// that sentence is returned with ok set. The returned slice stays valid until
// the next sentence completes.
func (a *Assembler) Feed(ch byte) (sentence []byte, ok bool, err error) {
	if a.resync {
		if ch != StartDelimiter {
			return nil, false, nil
		}
		a.resync = false
	}

	if ch == StartDelimiter && a.n != 0 {
		sentence = a.out[:copy(a.out[:], a.buf[:a.n])]
		ok = true
		a.n = 0
		a.stats.Sentences++
	}

	if a.n == len(a.buf) {
		a.n = 0
		a.resync = true
		a.stats.Overflows++
		return sentence, ok, ErrOverflow
	}
	a.buf[a.n] = ch
	a.n++
	return sentence, ok, nil
}

// Pending returns the number of bytes buffered for the in-progress sentence.
func (a *Assembler) Pending() int { return a.n }

func (a *Assembler) Stats() Stats { return a.stats }
