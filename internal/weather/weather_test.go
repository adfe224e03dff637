package weather

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll pushes s through a and returns every completed sentence.
func feedAll(t *testing.T, a *Assembler, s string) []string {
	t.Helper()
	var out []string
	for i := 0; i < len(s); i++ {
		sent, ok, err := a.Feed(s[i])
		if err != nil && !errors.Is(err, ErrOverflow) {
			t.Fatalf("Feed: %v", err)
		}
		if ok {
			out = append(out, string(sent))
		}
	}
	return out
}

func TestAssembler_SentenceClosedByNextDelimiter(t *testing.T) {
	var a Assembler
	got := feedAll(t, &a, "$IIMWV,123.4,N,05.6,N,*hh$")
	require.Len(t, got, 1)
	assert.Equal(t, "$IIMWV,123.4,N,05.6,N,*hh", got[0])
	assert.Equal(t, 1, a.Pending(), "closing '$' starts the next sentence")
}

func TestAssembler_TrailingPartialIsNotFlushed(t *testing.T) {
	var a Assembler
	got := feedAll(t, &a, "$IIMWV,1,R,2,N*00\r\n$IIMWV,3,R,4")
	require.Len(t, got, 1)
	assert.Equal(t, "$IIMWV,1,R,2,N*00\r\n", got[0])
	assert.Equal(t, len("$IIMWV,3,R,4"), a.Pending())
}

func TestAssembler_LeadingNoiseBecomesItsOwnSentence(t *testing.T) {
	var a Assembler
	got := feedAll(t, &a, "xx$AB$")
	assert.Equal(t, []string{"xx", "$AB"}, got)
}

func TestAssembler_OverflowResyncsOnNextDelimiter(t *testing.T) {
	var a Assembler
	long := "$" + strings.Repeat("X", BufferSize+10)

	var overflows int
	for i := 0; i < len(long); i++ {
		_, ok, err := a.Feed(long[i])
		assert.False(t, ok)
		if errors.Is(err, ErrOverflow) {
			overflows++
		}
	}
	assert.Equal(t, 1, overflows, "overflow is reported once per sentence")
	assert.Equal(t, 0, a.Pending(), "bytes after overflow are discarded")

	// The dropped sentence must not surface; the next one decodes normally.
	got := feedAll(t, &a, "$IIMWV,045.0,R,010.0,N,A*00$")
	require.Len(t, got, 1)
	w, ok := ParseMWV([]byte(got[0]))
	require.True(t, ok)
	assert.InDelta(t, 45.0, w.DirectionDeg, 1e-4)
	assert.InDelta(t, 10.0, w.SpeedKt, 1e-4)

	st := a.Stats()
	assert.Equal(t, uint64(1), st.Overflows)
	assert.Equal(t, uint64(1), st.Sentences)
}

func TestAssembler_ExactlyFullSentenceIsNotOverflow(t *testing.T) {
	var a Assembler
	full := "$" + strings.Repeat("Y", BufferSize-1)
	got := feedAll(t, &a, full+"$")
	require.Len(t, got, 1)
	assert.Equal(t, full, got[0])
	assert.Equal(t, uint64(0), a.Stats().Overflows)
}

func TestAssembler_ReturnedSentenceSurvivesFurtherInput(t *testing.T) {
	var a Assembler
	var first []byte
	for _, c := range []byte("$ABC$DEF") {
		s, ok, _ := a.Feed(c)
		if ok {
			first = s
		}
	}
	assert.Equal(t, "$ABC", string(first))
}

func TestParseMWV_Scenario(t *testing.T) {
	w, ok := ParseMWV([]byte("$IIMWV,123.4,N,05.6,N,*hh"))
	require.True(t, ok)
	assert.Equal(t, float32(123.4), w.DirectionDeg)
	assert.Equal(t, float32(5.6), w.SpeedKt)
}

func TestParseMWV_RejectsOtherTags(t *testing.T) {
	for _, s := range []string{
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M",
		"$IIMWX,123.4,R,005.6,N,A",
		"$IIMW",
		"",
		"IIMWV,123.4,R,005.6,N,A",
	} {
		_, ok := ParseMWV([]byte(s))
		assert.False(t, ok, "sentence %q", s)
	}
}

func TestParseMWV_Fields(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		dir      float32
		speed    float32
	}{
		{name: "station format", sentence: "$IIMWV,270.5,R,012.3,N,A*3C", dir: 270.5, speed: 12.3},
		{name: "garbage numbers", sentence: "$IIMWV,ab.cd,R,xx.yy,N,A*00", dir: 0, speed: 0},
		{name: "partial numbers", sentence: "$IIMWV,12x.4,R,7.5zz,N,A*00", dir: 12, speed: 7.5},
		{name: "short sentence", sentence: "$IIMWV,090", dir: 90, speed: 0},
		{name: "tag only", sentence: "$IIMWV", dir: 0, speed: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := ParseMWV([]byte(tt.sentence))
			require.True(t, ok)
			assert.InDelta(t, tt.dir, w.DirectionDeg, 1e-4)
			assert.InDelta(t, tt.speed, w.SpeedKt, 1e-4)
		})
	}
}

func TestParseMWV_FormattedValuesRoundTrip(t *testing.T) {
	for dir := 0; dir < 360; dir += 7 {
		for spd := 0; spd < 100; spd += 13 {
			d := float32(dir) + 0.5
			s := float32(spd) + 0.1
			line := fmt.Sprintf("$IIMWV,%05.1f,R,%05.1f,N,A*00", d, s)
			w, ok := ParseMWV([]byte(line))
			require.True(t, ok, line)
			assert.InDelta(t, d, w.DirectionDeg, 1e-3, line)
			assert.InDelta(t, s, w.SpeedKt, 1e-3, line)
		}
	}
}

func TestLenientFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float32
	}{
		{"123.4", 123.4},
		{"05.6,", 5.6},
		{"  42", 42},
		{"-1.5", -1.5},
		{"+2", 2},
		{".25", 0.25},
		{"7.", 7},
		{"1e2x", 100},
		{"1e", 1},
		{"1e+", 1},
		{"-", 0},
		{".", 0},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		got := lenientFloat([]byte(tt.in))
		assert.InDelta(t, tt.want, got, 1e-5, "input %q", tt.in)
	}
}
