package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TimeString
	}{
		{name: "12h afternoon", input: "2:00 PM", want: "14:00"},
		{name: "12h lowercase no space", input: "2:00pm", want: "14:00"},
		{name: "12h morning", input: "10:00 AM", want: "10:00"},
		{name: "noon", input: "12:00 PM", want: "12:00"},
		{name: "half past midnight", input: "12:30 AM", want: "00:30"},
		{name: "dotted meridiem", input: "9:15 p.m.", want: "21:15"},
		{name: "24h", input: "14:00", want: "14:00"},
		{name: "24h single digit hour", input: "9:05", want: "09:05"},
		{name: "24h midnight", input: "00:00", want: "00:00"},
		{name: "surrounding spaces", input: "  23:59 ", want: "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeOfDay_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"1400",
		"14",
		"24:00",
		"25:00",
		"13:00 PM",
		"0:30 AM",
		"10:60",
		"10:5",
		"ab:cd",
		"+1:00",
		"1:00 XM",
		"10:00:00",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := ParseTimeOfDay(input)
			require.ErrorIs(t, err, ErrUnparsableTime)
			assert.True(t, got.IsZero(), "failed parse must not yield a time")
		})
	}
}

func TestFormatTimeOfDay(t *testing.T) {
	assert.Equal(t, "2:00 PM", FormatTimeOfDay("14:00"))
	assert.Equal(t, "12:30 AM", FormatTimeOfDay("00:30"))
	assert.Equal(t, "12:00 PM", FormatTimeOfDay("12:00"))
	assert.Equal(t, "", FormatTimeOfDay("bad"))
}

func TestTimeString_Arithmetic(t *testing.T) {
	start := TimeString("10:00")

	end, err := start.AddMinutes(120)
	require.NoError(t, err)
	assert.Equal(t, TimeString("12:00"), end)
	assert.True(t, start.IsBefore(end))
	assert.True(t, end.IsAfter(start))
	assert.Equal(t, 10, start.Hour())

	midnight, err := TimeString("22:00").AddMinutes(120)
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, midnight.Minutes())

	_, err = TimeString("23:00").AddMinutes(120)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("09:30:00"))
	assert.Equal(t, TimeString("09:30"), ts)

	require.NoError(t, ts.Scan([]byte("18:45")))
	assert.Equal(t, TimeString("18:45"), ts)

	assert.Error(t, ts.Scan(42))
}
