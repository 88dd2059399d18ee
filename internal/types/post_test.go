package types

import (
	"errors"
	"testing"
)

func TestParsePushCount(t *testing.T) {
	tests := []struct {
		raw      string
		kind     PushKind
		expected int
	}{
		{"99", PushNumeric, 99},
		{"12", PushNumeric, 12},
		{" 3 ", PushNumeric, 3},
		{"爆", PushBurst, 99},
		{"X3", PushExcluded, -10},
		{"XX", PushExcluded, -10},
		{"", PushUnknown, 0},
		{"??", PushUnknown, 0},
	}

	for _, tt := range tests {
		got := ParsePushCount(tt.raw)
		if got.Kind != tt.kind {
			t.Errorf("ParsePushCount(%q) kind = %v, want %v", tt.raw, got.Kind, tt.kind)
		}
		if got.Value() != tt.expected {
			t.Errorf("ParsePushCount(%q).Value() = %d, want %d", tt.raw, got.Value(), tt.expected)
		}
	}
}

func TestPushCountFromValue(t *testing.T) {
	if got := PushCountFromValue(-10); got.Kind != PushExcluded {
		t.Errorf("expected excluded for -10, got %s", got)
	}
	if got := PushCountFromValue(42); got != Count(42) {
		t.Errorf("expected Count(42), got %s", got)
	}
}

func TestNewPostRecordRequiresLink(t *testing.T) {
	_, err := NewPostRecord(PostReference{Title: "deleted"}, "")
	if !errors.Is(err, ErrMissingLink) {
		t.Fatalf("expected ErrMissingLink, got %v", err)
	}

	rec, err := NewPostRecord(PostReference{Title: "t", Link: "/bbs/Food/M.1.A.html"}, "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body != "body" || rec.Link != "/bbs/Food/M.1.A.html" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestUnscoredRoundTrip(t *testing.T) {
	ds := Dataset{
		{PostReference: PostReference{Link: "/a"}, Body: "x"},
		{PostReference: PostReference{Link: "/b"}, Body: "y"},
	}
	rows := Unscored(ds)
	for _, row := range rows {
		if row.Scored() {
			t.Errorf("row %s should not be scored", row.Link)
		}
	}
	back := Records(rows)
	if len(back) != 2 || back[1].Body != "y" {
		t.Errorf("unexpected dataset %+v", back)
	}
}
