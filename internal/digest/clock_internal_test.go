package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnitSystemClockNow(t *testing.T) {
	assert.InDelta(
		t,
		time.Now().UnixMilli(),
		systemClock{}.Now().UnixMilli(),
		float64(50*time.Millisecond),
		"should return current timestamp",
	)
}

func TestUnitWindowFor(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	assert.NoError(t, err, "can't load location")

	now := time.Date(2024, time.May, 1, 6, 30, 0, 0, time.UTC) // 05/01 15:30 JST

	window := windowFor(now, tokyo)

	assert.Equal(t, time.Date(2024, time.May, 1, 9, 0, 0, 0, tokyo), window.Start,
		"window should open at the target day's morning")
	assert.Equal(t, time.Date(2024, time.May, 2, 9, 0, 0, 0, tokyo), window.End,
		"window should span exactly one day")
}
