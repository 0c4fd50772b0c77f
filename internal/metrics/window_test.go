package metrics

import (
	"testing"
	"time"

	"fabline/internal/track"
)

func TestSubdivideDay(t *testing.T) {
	w := NewReportWindow(day(2024, 3, 1), day(2024, 3, 5), BucketDay)
	buckets := w.Subdivide()
	if len(buckets) != 5 {
		t.Fatalf("expected 5 day buckets inclusive of both endpoints, got %d", len(buckets))
	}
	if buckets[0].Label != "2024-03-01" || buckets[4].Label != "2024-03-05" {
		t.Errorf("unexpected labels %q .. %q", buckets[0].Label, buckets[4].Label)
	}
}

func TestSubdivideWeekAdvancesFromRangeStart(t *testing.T) {
	// 2024-03-06 is a Wednesday; weeks must start there, not on a calendar
	// week boundary.
	w := NewReportWindow(day(2024, 3, 6), day(2024, 3, 22), BucketWeek)
	buckets := w.Subdivide()
	if len(buckets) != 3 {
		t.Fatalf("expected 3 week buckets, got %d", len(buckets))
	}
	if !buckets[1].Start.Equal(day(2024, 3, 13)) {
		t.Errorf("second week starts %v, want 2024-03-13", buckets[1].Start)
	}
	if buckets[2].Days() != 3 {
		t.Errorf("final clipped week covers %d days, want 3", buckets[2].Days())
	}
}

func TestSubdivideMonthClipsToRange(t *testing.T) {
	w := NewReportWindow(day(2024, 1, 15), day(2024, 3, 10), BucketMonth)
	buckets := w.Subdivide()
	if len(buckets) != 3 {
		t.Fatalf("expected 3 month buckets, got %d", len(buckets))
	}
	if buckets[0].Days() != 17 {
		t.Errorf("clipped January covers %d days, want 17", buckets[0].Days())
	}
	if buckets[1].Days() != 29 {
		t.Errorf("February 2024 covers %d days, want 29", buckets[1].Days())
	}
	if buckets[2].Days() != 10 {
		t.Errorf("clipped March covers %d days, want 10", buckets[2].Days())
	}
}

func TestRollup(t *testing.T) {
	records := []track.ProgressRecord{
		{WorkerID: "w", Quantity: 3, CompletedAt: day(2024, 3, 1).Add(10 * time.Hour)},
		{WorkerID: "w", Quantity: 2, CompletedAt: day(2024, 3, 1).Add(16 * time.Hour)},
		{WorkerID: "w", Quantity: 4, CompletedAt: day(2024, 3, 3)},
		// Outside the window: ignored.
		{WorkerID: "w", Quantity: 9, CompletedAt: day(2024, 4, 1)},
	}

	w := NewReportWindow(day(2024, 3, 1), day(2024, 3, 4), BucketDay)
	buckets := w.Rollup(records, 2.5)

	if buckets[0].Completed != 5 {
		t.Errorf("day 1 completed = %d, want 5", buckets[0].Completed)
	}
	if buckets[1].Completed != 0 {
		t.Errorf("empty day must still appear with completed 0, got %d", buckets[1].Completed)
	}
	if buckets[2].Completed != 4 {
		t.Errorf("day 3 completed = %d, want 4", buckets[2].Completed)
	}
	for _, b := range buckets {
		if b.Expected != 2.5 {
			t.Errorf("day bucket expected = %g, want 2.5", b.Expected)
		}
	}
}

func TestRollupWeekExpectedScalesWithClippedDays(t *testing.T) {
	w := NewReportWindow(day(2024, 3, 1), day(2024, 3, 10), BucketWeek)
	buckets := w.Rollup(nil, 2)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Expected != 14 {
		t.Errorf("full week expected = %g, want 14", buckets[0].Expected)
	}
	if buckets[1].Expected != 6 {
		t.Errorf("clipped 3-day week expected = %g, want 6", buckets[1].Expected)
	}
}

func TestRollupMonthBucketIndex(t *testing.T) {
	records := []track.ProgressRecord{
		{Quantity: 1, CompletedAt: day(2024, 1, 20)},
		{Quantity: 2, CompletedAt: day(2024, 2, 5)},
		{Quantity: 3, CompletedAt: day(2024, 3, 9)},
	}
	w := NewReportWindow(day(2024, 1, 15), day(2024, 3, 10), BucketMonth)
	buckets := w.Rollup(records, 1)

	want := []int{1, 2, 3}
	for i, b := range buckets {
		if b.Completed != want[i] {
			t.Errorf("bucket %d completed = %d, want %d", i, b.Completed, want[i])
		}
	}
}

func TestRollupAcrossOffsetChange(t *testing.T) {
	// A spring-forward transition leaves later local midnights one hour short
	// of a whole day from the range start. Bucket indexes must come from the
	// calendar, not elapsed hours.
	winter := time.FixedZone("UTC-5", -5*60*60)
	summer := time.FixedZone("UTC-4", -4*60*60)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, winter)

	records := []track.ProgressRecord{
		{Quantity: 7, CompletedAt: time.Date(2024, 3, 15, 0, 0, 0, 0, summer)},
	}

	daily := NewReportWindow(start, time.Date(2024, 3, 20, 0, 0, 0, 0, summer), BucketDay).Rollup(records, 0)
	if len(daily) != 20 {
		t.Fatalf("got %d day buckets, want 20", len(daily))
	}
	if daily[14].Completed != 7 {
		t.Errorf("Mar 15 bucket completed = %d, want 7", daily[14].Completed)
	}

	weekly := NewReportWindow(start, time.Date(2024, 3, 18, 0, 0, 0, 0, summer), BucketWeek).Rollup(records, 1)
	if len(weekly) != 3 {
		t.Fatalf("got %d week buckets, want 3", len(weekly))
	}
	if weekly[2].Completed != 7 {
		t.Errorf("third week completed = %d, want 7", weekly[2].Completed)
	}
	if weekly[2].Days() != 4 {
		t.Errorf("clipped week spanning the transition covers %d days, want 4", weekly[2].Days())
	}
}

func TestNewReportWindowSanitizesBucket(t *testing.T) {
	w := NewReportWindow(day(2024, 1, 1), day(2024, 1, 2), "fortnight")
	if w.Bucket != BucketDay {
		t.Errorf("unknown bucket should fall back to day, got %q", w.Bucket)
	}
}
