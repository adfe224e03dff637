package weather

import (
	"strconv"
)

// MWV: Wind Speed and Angle, as sent by the rig's weather station.
//
//	$IIMWV,ddd.d,R,sss.s,N,A*hh
//	0      7     13 15
//
// Only the fixed-offset direction and speed columns are read; the reference,
// unit and status fields and the checksum are ignored.
const (
	mwvTag = "$IIMWV"

	dirOffset   = 7
	dirLen      = 5
	speedOffset = 15
	speedLen    = 5
)

// Wind is one decoded MWV sentence.
type Wind struct {
	DirectionDeg float32
	SpeedKt      float32
}

// IsMWV reports whether sentence carries the MWV tag.
func IsMWV(sentence []byte) bool {
	return len(sentence) >= len(mwvTag) && string(sentence[:len(mwvTag)]) == mwvTag
}

// ParseMWV decodes a completed sentence. ok is false when the tag does not
// match. Numeric columns are parsed leniently: garbage yields 0 or the value
// of the longest numeric prefix, never an error.
func ParseMWV(sentence []byte) (w Wind, ok bool) {
	if !IsMWV(sentence) {
		return Wind{}, false
	}
	w.DirectionDeg = lenientFloat(column(sentence, dirOffset, dirLen))
	w.SpeedKt = lenientFloat(column(sentence, speedOffset, speedLen))
	return w, true
}

// column returns up to n bytes at off, truncated to what the sentence holds.
func column(b []byte, off, n int) []byte {
	if off >= len(b) {
		return nil
	}
	end := off + n
	if end > len(b) {
		end = len(b)
	}
	return b[off:end]
}

// lenientFloat parses the longest prefix of b shaped like
// [+-]digits[.digits][(e|E)[+-]digits], after leading blanks. It returns 0
// when no digits are present.
func lenientFloat(b []byte) float32 {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	start := i
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	digits := 0
	for i < len(b) && isDigit(b[i]) {
		i++
		digits++
	}
	if i < len(b) && b[i] == '.' {
		i++
		for i < len(b) && isDigit(b[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	end := i
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}
		k := j
		for k < len(b) && isDigit(b[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	// The prefix is well formed, so only range errors remain and ParseFloat
	// already returns the saturated value for those.
	v, _ := strconv.ParseFloat(string(b[start:end]), 32)
	return float32(v)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
