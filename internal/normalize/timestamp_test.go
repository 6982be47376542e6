package normalize

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      time.Time
		wantError bool
	}{
		{
			name: "Day-month-year with seconds",
			raw:  "01/02/2024 08:30:15",
			want: time.Date(2024, 2, 1, 8, 30, 15, 0, time.UTC),
		},
		{
			name: "Day-month-year without seconds",
			raw:  "01/02/2024 08:30",
			want: time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "ISO datetime",
			raw:  "2024-02-01T08:30:00",
			want: time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "ISO datetime with space",
			raw:  "2024-02-01 08:30:00",
			want: time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "Dash separated day-month-year",
			raw:  "01-02-2024 08:30:00",
			want: time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "Date only defaults to midnight",
			raw:  "15/03/2024",
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "ISO date only",
			raw:  "2024-03-15",
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Ambiguous day reads as day-month-year",
			raw:  "05/03/2024 10:00:00",
			want: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "Month-day-year accepted when day is impossible as month",
			raw:  "03/25/2024 10:00:00",
			want: time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "Surrounding whitespace",
			raw:  "  01/02/2024 08:30:00  ",
			want: time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:      "Free text",
			raw:       "yesterday",
			wantError: true,
		},
		{
			name:      "Empty cell",
			raw:       "",
			wantError: true,
		},
		{
			name:      "Time without date",
			raw:       "08:30:00",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw)

			if tt.wantError {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) = %v, expected error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) unexpected error: %v", tt.raw, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseTimestampEquivalentForms(t *testing.T) {
	// The same instant written in broker and ISO form must normalize equal.
	a, err := ParseTimestamp("01/02/2024 08:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ParseTimestamp("2024-02-01T08:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("equivalent timestamps disagree: %v vs %v", a, b)
	}
}

func TestParseSplitTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		dateRaw   string
		timeRaw   string
		want      time.Time
		wantError bool
	}{
		{
			name:    "Date plus time",
			dateRaw: "01/02/2024",
			timeRaw: "08:30:00",
			want:    time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:    "Date plus short time",
			dateRaw: "01/02/2024",
			timeRaw: "14:05",
			want:    time.Date(2024, 2, 1, 14, 5, 0, 0, time.UTC),
		},
		{
			name:    "Empty time defaults to midnight",
			dateRaw: "01/02/2024",
			timeRaw: "",
			want:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "Combined cell in the date column",
			dateRaw: "01/02/2024 08:30:00",
			timeRaw: "",
			want:    time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:      "Bad date",
			dateRaw:   "not a date",
			timeRaw:   "08:30:00",
			wantError: true,
		},
		{
			name:      "Bad time",
			dateRaw:   "01/02/2024",
			timeRaw:   "around nine",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSplitTimestamp(tt.dateRaw, tt.timeRaw)

			if tt.wantError {
				if err == nil {
					t.Errorf("ParseSplitTimestamp(%q, %q) = %v, expected error", tt.dateRaw, tt.timeRaw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSplitTimestamp(%q, %q) unexpected error: %v", tt.dateRaw, tt.timeRaw, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSplitTimestamp(%q, %q) = %v, want %v", tt.dateRaw, tt.timeRaw, got, tt.want)
			}
		})
	}
}
