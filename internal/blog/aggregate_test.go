package blog

import (
	"testing"
	"time"
)

func TestTagCounts(t *testing.T) {
	posts := []*Post{
		{Category: "Go"},
		{Category: ""},
		{Category: "Go"},
		{Category: "databases"},
	}

	tags := TagCounts(posts)
	if tags["Go"] != 2 {
		t.Errorf(`tags["Go"] = %d`, tags["Go"])
	}
	if tags["databases"] != 1 {
		t.Errorf(`tags["databases"] = %d`, tags["databases"])
	}
	if _, ok := tags[""]; ok {
		t.Error("empty category counted")
	}
	if len(tags) != 2 {
		t.Errorf("got %d tags", len(tags))
	}
}

func TestMonthCounts(t *testing.T) {
	at := func(y int, m time.Month) *time.Time {
		ts := time.Date(y, m, 10, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	posts := []*Post{
		{PublishedAt: at(2023, time.May)},
		{PublishedAt: at(2024, time.March)},
		{PublishedAt: at(2024, time.December)},
		{PublishedAt: at(2024, time.March)},
	}

	months := MonthCounts(posts)
	want := []ArchiveMonth{
		{Year: 2024, Month: time.December, Count: 1},
		{Year: 2024, Month: time.March, Count: 2},
		{Year: 2023, Month: time.May, Count: 1},
	}
	if len(months) != len(want) {
		t.Fatalf("got %d buckets", len(months))
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, months[i], want[i])
		}
	}
}

func TestMonthCounts_Empty(t *testing.T) {
	if months := MonthCounts(nil); len(months) != 0 {
		t.Errorf("got %+v", months)
	}
}
