package game

import (
	"errors"
	"testing"
	"time"
)

func TestBucketForDate(t *testing.T) {
	tests := []struct {
		date    string
		want    Bucket
		wantErr bool
	}{
		{"2025-03-30", Bucket{Year: 2025, Month: 3, Series: DefaultSeries}, false},
		{"2024-12-01", Bucket{Year: 2024, Month: 12, Series: DefaultSeries}, false},
		{"2025-3-30", Bucket{}, true},
		{"20250330", Bucket{}, true},
		{"", Bucket{}, true},
		{"2025-02-30", Bucket{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := BucketForDate(tt.date)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("BucketForDate(%q) error = %v, want ErrInvalidDate", tt.date, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BucketForDate(%q) unexpected error: %v", tt.date, err)
			}
			if got != tt.want {
				t.Errorf("BucketForDate(%q) = %+v, want %+v", tt.date, got, tt.want)
			}
		})
	}
}

func TestBucket_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bucket  Bucket
		wantErr bool
	}{
		{"valid", NewBucket(2025, 4, ""), false},
		{"month zero", NewBucket(2025, 0, ""), true},
		{"month thirteen", NewBucket(2025, 13, ""), true},
		{"before league", NewBucket(1970, 4, ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bucket.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBucket_String(t *testing.T) {
	b := NewBucket(2025, 4, "")
	if got := b.String(); got != "2025-04/0,9,6" {
		t.Errorf("String() = %q, want 2025-04/0,9,6", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(2025, 3, 9); got != "2025-03-09" {
		t.Errorf("FormatDate() = %q, want 2025-03-09", got)
	}
}

func TestToday(t *testing.T) {
	// 16:30 UTC is already the next morning in Seoul
	now := time.Date(2025, 3, 31, 16, 30, 0, 0, time.UTC)
	if got := Today(now); got != "2025-04-01" {
		t.Errorf("Today() = %q, want 2025-04-01", got)
	}
}
