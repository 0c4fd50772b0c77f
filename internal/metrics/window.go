package metrics

import (
	"fmt"
	"time"

	"fabline/internal/track"
)

// Bucket kinds accepted by ReportWindow.
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

// Bucket is one rollup unit of completed-vs-expected quantity.
type Bucket struct {
	Label     string    `json:"label"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Completed int       `json:"completed"`
	Expected  float64   `json:"expected"`
}

// Days returns the number of calendar days the bucket covers, inclusive.
func (b Bucket) Days() int {
	return daysBetween(b.Start, b.End) + 1
}

// ReportWindow produces day/week/month rollups over a date range, inclusive
// of both endpoints. Week buckets start on the first day of the range and
// advance by 7 days; month buckets are calendar months clipped to the range.
type ReportWindow struct {
	Start  time.Time
	End    time.Time
	Bucket string
}

// NewReportWindow normalizes the range to calendar dates and sanitizes the
// bucket kind.
func NewReportWindow(start, end time.Time, bucket string) ReportWindow {
	switch bucket {
	case BucketWeek, BucketMonth:
	default:
		bucket = BucketDay
	}
	return ReportWindow{
		Start:  dateOf(start),
		End:    dateOf(end),
		Bucket: bucket,
	}
}

// Subdivide returns the empty bucket skeleton for the window. Every calendar
// unit fully or partially inside the range gets a bucket.
func (w ReportWindow) Subdivide() []Bucket {
	var buckets []Bucket
	if w.End.Before(w.Start) {
		return buckets
	}

	current := w.Start
	for !current.After(w.End) {
		var bucketEnd time.Time
		switch w.Bucket {
		case BucketWeek:
			bucketEnd = current.AddDate(0, 0, 6)
		case BucketMonth:
			firstOfNext := time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, current.Location())
			bucketEnd = firstOfNext.AddDate(0, 0, -1)
		default:
			bucketEnd = current
		}
		if bucketEnd.After(w.End) {
			bucketEnd = w.End
		}

		buckets = append(buckets, Bucket{
			Label: w.label(current),
			Start: current,
			End:   bucketEnd,
		})
		current = bucketEnd.AddDate(0, 0, 1)
	}
	return buckets
}

// Rollup fills the bucket skeleton from progress records. dailyExpected is
// the caller-supplied per-day target (typically assignedQuantity divided by
// total project duration); each bucket's expected value scales with its
// clipped day count. Buckets with no matching records still appear with
// completed = 0.
func (w ReportWindow) Rollup(records []track.ProgressRecord, dailyExpected float64) []Bucket {
	buckets := w.Subdivide()
	for i := range buckets {
		buckets[i].Expected = dailyExpected * float64(buckets[i].Days())
	}

	for _, r := range records {
		idx := w.findBucket(buckets, dateOf(r.CompletedAt))
		if idx < 0 {
			continue
		}
		buckets[idx].Completed += r.Quantity
	}
	return buckets
}

func (w ReportWindow) findBucket(buckets []Bucket, day time.Time) int {
	if day.Before(w.Start) || day.After(w.End) {
		return -1
	}
	switch w.Bucket {
	case BucketWeek:
		idx := daysBetween(w.Start, day) / 7
		if idx >= len(buckets) {
			return -1
		}
		return idx
	case BucketMonth:
		idx := (day.Year()-w.Start.Year())*12 + int(day.Month()-w.Start.Month())
		if idx >= len(buckets) {
			return -1
		}
		return idx
	default:
		idx := daysBetween(w.Start, day)
		if idx >= len(buckets) {
			return -1
		}
		return idx
	}
}

func (w ReportWindow) label(t time.Time) string {
	switch w.Bucket {
	case BucketMonth:
		return t.Format("Jan 2006")
	case BucketWeek:
		return fmt.Sprintf("wk of %s", t.Format("2006-01-02"))
	default:
		return t.Format("2006-01-02")
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from one date to another. Both dates are
// re-anchored in UTC first so offset changes between them (DST, mixed zones)
// cannot shift the count.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
