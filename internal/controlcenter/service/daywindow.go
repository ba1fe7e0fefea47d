package service

import (
	"time"

	"github.com/voyatra/voyatra/internal/controlcenter/domain"
)

// ResolveDayWindow converts an instant into the UTC range covering the
// current civil day in a fixed, non-DST offset zone. It cannot fail its
// caller: when no usable zone is configured it falls back to the UTC
// calendar day with a full 24h span.
func ResolveDayWindow(now time.Time, label string, offsetMinutes int) domain.DayWindow {
	if label == "" && offsetMinutes == 0 {
		u := now.UTC()
		start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		return domain.DayWindow{
			TimeZoneLabel: "UTC",
			StartUTC:      start,
			EndUTC:        start.Add(24*time.Hour - time.Millisecond),
		}
	}

	zone := time.FixedZone(label, offsetMinutes*60)
	local := now.In(zone)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), zone)

	return domain.DayWindow{
		TimeZoneLabel: label,
		StartUTC:      start.UTC(),
		EndUTC:        end.UTC(),
	}
}
