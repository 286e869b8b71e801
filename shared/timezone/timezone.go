package timezone

import (
	"fmt"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"spacebook/config"
	"spacebook/shared/constant"

	"github.com/rs/zerolog/log"
)

var appLocation atomic.Pointer[time.Location]

func init() {
	Init(config.Get().App.Timezone)
}

// Init loads name as the application location. It is called on import and
// may be called again by tests.
func Init(name string) {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		name = "UTC"
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC")

		appLocation.Store(time.UTC)

		return
	}

	appLocation.Store(loc)

	log.Info().Str("timezone", name).Msg("Application timezone initialized")
}

func GetLocation() *time.Location {
	if loc := appLocation.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

func Parse(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, GetLocation())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", value, err)
	}

	return t, nil
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// ParseDate parses YYYY-MM-DD as local midnight.
func ParseDate(value string) (time.Time, error) {
	return Parse(constant.DateOnlyFormat, value)
}

// StartOfDay truncates t to local midnight of its civil date.
func StartOfDay(t time.Time) time.Time {
	t = ToAppTime(t)

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Combine places an HH:MM (or HH:MM:SS) clock value on the civil date of day.
func Combine(day time.Time, clock string) (time.Time, error) {
	layout := constant.ClockFormat
	if len(clock) > len(constant.ClockFormat) {
		layout = time.TimeOnly
	}

	parsed, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse clock %q: %w", clock, err)
	}

	day = StartOfDay(day)

	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, day.Location()), nil
}
