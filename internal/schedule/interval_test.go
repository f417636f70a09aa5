package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	testCases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30am", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		got, err := ParseClock(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", FormatClock(480))
	assert.Equal(t, "00:05", FormatClock(5))
	assert.Equal(t, "22:00", FormatClock(1320))
}

func TestParseInterval(t *testing.T) {
	iv, err := ParseInterval("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 540, End: 630}, iv)

	_, err = ParseInterval("10:00", "10:00")
	assert.Error(t, err, "zero-length interval must be rejected")

	_, err = ParseInterval("11:00", "10:00")
	assert.Error(t, err, "inverted interval must be rejected")
}

func TestIntervalOverlaps_HalfOpen(t *testing.T) {
	a := Interval{Start: 540, End: 600} // 09:00-10:00
	b := Interval{Start: 600, End: 660} // 10:00-11:00
	c := Interval{Start: 570, End: 630} // 09:30-10:30

	assert.False(t, a.Overlaps(b), "boundary-touching intervals do not overlap")
	assert.False(t, b.Overlaps(a))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
	assert.True(t, a.Overlaps(a))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", d)

	_, err = ParseDate("01/06/2025")
	assert.Error(t, err)

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
}
