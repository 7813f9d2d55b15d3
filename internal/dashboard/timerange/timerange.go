package timerange

import (
	"sort"
	"time"

	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the half-open window.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Previous returns the equal-length window immediately before this one.
func (i Interval) Previous() Interval {
	return Interval{Start: i.Start.Add(-i.Duration()), End: i.Start}
}

// Bucketer assigns timestamps to contiguous half-open buckets whose union
// equals the resolved interval.
type Bucketer struct {
	granularity enums.Granularity
	bounds      []Interval
}

// Granularity returns the bucket width strategy.
func (b *Bucketer) Granularity() enums.Granularity {
	return b.granularity
}

// Buckets returns the bucket bounds in chronological order.
func (b *Bucketer) Buckets() []Interval {
	return b.bounds
}

// Len returns the bucket count.
func (b *Bucketer) Len() int {
	return len(b.bounds)
}

// IndexOf returns the bucket index for t, or -1 when t falls outside every
// bucket.
func (b *Bucketer) IndexOf(t time.Time) int {
	n := len(b.bounds)
	if n == 0 {
		return -1
	}
	// buckets are contiguous and sorted, so the first bucket whose end is
	// after t is the only candidate
	idx := sort.Search(n, func(i int) bool {
		return b.bounds[i].End.After(t)
	})
	if idx == n || t.Before(b.bounds[idx].Start) {
		return -1
	}
	return idx
}

// Resolve turns a range keyword (or a custom From/To pair) into the concrete
// half-open interval and the bucket strategy that splits it. All boundary
// math happens in loc; reference anchors the keyword windows.
func Resolve(keyword enums.RangeKeyword, from, to, reference time.Time, loc *time.Location) (Interval, *Bucketer, error) {
	if loc == nil {
		loc = time.UTC
	}
	ref := reference.In(loc)

	switch keyword {
	case enums.RangeToday:
		start := midnight(ref)
		interval := Interval{Start: start, End: start.AddDate(0, 0, 1)}
		return interval, build(enums.GranularityHourly, interval, stepHour), nil

	case enums.RangeWeek:
		start := mondayMidnight(ref)
		interval := Interval{Start: start, End: start.AddDate(0, 0, 7)}
		return interval, build(enums.GranularityDaily, interval, stepDay), nil

	case enums.RangeMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		interval := Interval{Start: start, End: start.AddDate(0, 1, 0)}
		return interval, build(enums.GranularityWeekly, interval, stepWeek), nil

	case enums.RangeYear:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
		interval := Interval{Start: start, End: start.AddDate(1, 0, 0)}
		return interval, build(enums.GranularityMonthly, interval, stepMonth), nil

	case enums.RangeCustom:
		if from.IsZero() || to.IsZero() {
			return Interval{}, nil, pkgerrors.New(pkgerrors.CodeInvalidRange, "custom range requires from and to")
		}
		if !from.Before(to) {
			return Interval{}, nil, pkgerrors.New(pkgerrors.CodeInvalidRange, "range start must be before range end")
		}
		interval := Interval{Start: from.In(loc), End: to.In(loc)}
		bucketer := &Bucketer{granularity: enums.GranularityWindow, bounds: []Interval{interval}}
		return interval, bucketer, nil

	default:
		return Interval{}, nil, pkgerrors.New(pkgerrors.CodeInvalidRange, "unknown range keyword")
	}
}

// build walks step boundaries from interval start to end, clipping the final
// bucket. Stepping with wall-clock arithmetic keeps the union exact across
// DST transitions.
func build(g enums.Granularity, interval Interval, step func(time.Time) time.Time) *Bucketer {
	var bounds []Interval
	cursor := interval.Start
	for cursor.Before(interval.End) {
		next := step(cursor)
		if next.After(interval.End) {
			next = interval.End
		}
		bounds = append(bounds, Interval{Start: cursor, End: next})
		cursor = next
	}
	return &Bucketer{granularity: g, bounds: bounds}
}

func stepHour(t time.Time) time.Time  { return t.Add(time.Hour) }
func stepDay(t time.Time) time.Time   { return t.AddDate(0, 0, 1) }
func stepWeek(t time.Time) time.Time  { return t.AddDate(0, 0, 7) }
func stepMonth(t time.Time) time.Time { return t.AddDate(0, 1, 0) }

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayMidnight returns the most recent Monday 00:00 at or before t.
func mondayMidnight(t time.Time) time.Time {
	day := midnight(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
