// Package timezone pins every wall-clock calculation to the operating timezone
// configured through APP_TIMEZONE.
//
// Booking dates and clock times arrive as local civil values ("2025-03-03",
// "09:00"), so they are always interpreted in this location:
//
//	day, err := timezone.ParseDate("2025-03-03")
//	start, err := timezone.Combine(day, "09:00")
//
// Use IANA names ("UTC", "Asia/Jakarta", "Europe/London"). An unknown name
// falls back to UTC with an error log.
package timezone
