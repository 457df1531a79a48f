package game

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used throughout the schedule
const DateLayout = "2006-01-02"

// DefaultSeries selects regular season, tiebreakers and postseason on the
// schedule page.
const DefaultSeries = "0,9,6"

// KST is Korea Standard Time, which has no daylight saving
var KST = time.FixedZone("KST", 9*60*60)

// ErrInvalidDate is returned for dates not in YYYY-MM-DD form
var ErrInvalidDate = errors.New("invalid date")

// Bucket is the unit at which schedule collection and freshness are tracked
type Bucket struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Series string `json:"series"`
}

// NewBucket returns the bucket for year and month, using DefaultSeries when
// series is empty.
func NewBucket(year, month int, series string) Bucket {
	if series == "" {
		series = DefaultSeries
	}
	return Bucket{Year: year, Month: month, Series: series}
}

// String formats the bucket as "YYYY-MM/series"
func (b Bucket) String() string {
	return fmt.Sprintf("%04d-%02d/%s", b.Year, b.Month, b.Series)
}

// Validate checks the month range
func (b Bucket) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return fmt.Errorf("month %d out of range", b.Month)
	}
	if b.Year < 1982 {
		return fmt.Errorf("year %d out of range", b.Year)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date. The error wraps ErrInvalidDate.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// BucketForDate returns the default-series bucket covering date
func BucketForDate(date string) (Bucket, error) {
	t, err := ParseDate(date)
	if err != nil {
		return Bucket{}, err
	}
	return NewBucket(t.Year(), int(t.Month()), DefaultSeries), nil
}

// FormatDate formats year, month and day as YYYY-MM-DD
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// Today returns the calendar day of now in Korea
func Today(now time.Time) string {
	return now.In(KST).Format(DateLayout)
}
