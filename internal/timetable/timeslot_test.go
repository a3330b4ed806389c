package timetable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotOverlapsHalfOpenBoundary(t *testing.T) {
	b := NewTimeSlot(Sunday, MustParseClock("09:00"), 45, 2, false)

	endsAtNine := NewTimeSlot(Sunday, MustParseClock("08:15"), 45, 1, false)
	assert.Equal(t, MustParseClock("09:00"), endsAtNine.End())
	assert.False(t, endsAtNine.Overlaps(b))
	assert.False(t, b.Overlaps(endsAtNine))

	endsAtNineOhOne := NewTimeSlot(Sunday, MustParseClock("08:16"), 45, 1, false)
	assert.True(t, endsAtNineOhOne.Overlaps(b))
	assert.True(t, b.Overlaps(endsAtNineOhOne))
}

func TestTimeSlotOverlapsDifferentDays(t *testing.T) {
	a := NewTimeSlot(Sunday, MustParseClock("09:00"), 45, 1, false)
	b := NewTimeSlot(Monday, MustParseClock("09:00"), 45, 1, false)
	assert.False(t, a.Overlaps(b))
}

func TestTimeSlotEqualIgnoresPeriodAndBreak(t *testing.T) {
	a := NewTimeSlot(Friday, MustParseClock("10:15"), 15, 4, true)
	b := NewTimeSlot(Friday, MustParseClock("10:15"), 15, 9, false)
	c := NewTimeSlot(Friday, MustParseClock("10:15"), 20, 4, true)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestNewTimeSlotRejectsNonPositiveDuration(t *testing.T) {
	assert.Panics(t, func() { NewTimeSlot(Sunday, 0, 0, 1, false) })
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock(" 13:05 ")
	require.NoError(t, err)
	assert.Equal(t, NewClock(13, 5), c)
	assert.Equal(t, "13:05", c.String())

	for _, raw := range []string{"", "1305", "24:00", "10:60", "ab:cd"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestClockJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		At Clock `json:"at"`
	}{At: NewClock(7, 30)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:30"}`, string(payload))

	var decoded struct {
		At Clock `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"14:45"}`), &decoded))
	assert.Equal(t, NewClock(14, 45), decoded.At)
	assert.Error(t, json.Unmarshal([]byte(`{"at":"nope"}`), &decoded))
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("wednesday")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, day)
	assert.Equal(t, 4, day.Index())
	assert.Equal(t, "Wednesday", day.Title())

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}
