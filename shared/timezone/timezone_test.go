package timezone_test

import (
	"testing"
	"time"

	"spacebook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { timezone.Init("UTC") })

	timezone.Init("Asia/Jakarta")
	assert.Equal(t, "Asia/Jakarta", timezone.GetLocation().String())
	assert.Equal(t, "Asia/Jakarta", timezone.Now().Location().String())

	timezone.Init("Mars/Olympus")
	assert.Equal(t, time.UTC, timezone.GetLocation())
}

func TestParseDateAndCombine(t *testing.T) {
	t.Cleanup(func() { timezone.Init("UTC") })
	timezone.Init("Europe/London")

	day, err := timezone.ParseDate("2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, 0, day.Hour())
	assert.Equal(t, "Europe/London", day.Location().String())

	start, err := timezone.Combine(day, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 3, 9, 30, 0, 0, timezone.GetLocation()), start)

	end, err := timezone.Combine(day, "17:00:00")
	require.NoError(t, err)
	assert.Equal(t, 17, end.Hour())

	_, err = timezone.ParseDate("03/03/2025")
	assert.Error(t, err)

	_, err = timezone.Combine(day, "25:00")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	t.Cleanup(func() { timezone.Init("UTC") })
	timezone.Init("UTC")

	got := timezone.StartOfDay(time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "2025-06-01", timezone.Format(got, time.DateOnly))
}
