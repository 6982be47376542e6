package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		wantError bool
	}{
		{
			name: "Plain dot decimal",
			raw:  "1234.56",
			want: "1234.56",
		},
		{
			name: "Comma decimal with dot thousands",
			raw:  "1.234,56",
			want: "1234.56",
		},
		{
			name: "Dot decimal with comma thousands",
			raw:  "1,234.56",
			want: "1234.56",
		},
		{
			name: "Lone comma as decimal separator",
			raw:  "41,50",
			want: "41.5",
		},
		{
			name: "Lone comma with one decimal digit",
			raw:  "7,5",
			want: "7.5",
		},
		{
			name: "Comma as thousands separator only",
			raw:  "1,234",
			want: "1234",
		},
		{
			name: "Multiple commas are thousands separators",
			raw:  "1,234,567",
			want: "1234567",
		},
		{
			name: "Negative comma decimal",
			raw:  "-0,25",
			want: "-0.25",
		},
		{
			name: "Currency prefix stripped",
			raw:  "R$ 1.234,56",
			want: "1234.56",
		},
		{
			name: "Dollar prefix stripped",
			raw:  "$ 99.90",
			want: "99.9",
		},
		{
			name: "Percent suffix stripped",
			raw:  "12,5%",
			want: "12.5",
		},
		{
			name: "Surrounding whitespace",
			raw:  "  150.00  ",
			want: "150",
		},
		{
			name: "Integer",
			raw:  "42",
			want: "42",
		},
		{
			name: "Zero",
			raw:  "0",
			want: "0",
		},
		{
			name:      "Free text",
			raw:       "abc",
			wantError: true,
		},
		{
			name:      "Empty cell",
			raw:       "",
			wantError: true,
		},
		{
			name:      "Whitespace only",
			raw:       "   ",
			wantError: true,
		},
		{
			name:      "Separators without digits",
			raw:       ",.",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.raw)

			if tt.wantError {
				if err == nil {
					t.Errorf("ParseResult(%q) = %s, expected error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResult(%q) unexpected error: %v", tt.raw, err)
			}

			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseResult(%q) = %s, want %s", tt.raw, got, want)
			}
		})
	}
}

func TestParseResultLocaleAgreement(t *testing.T) {
	// The same value written in both locale conventions must parse equal.
	a, err := ParseResult("1.234,56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ParseResult("1,234.56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := ParseResult("1234.56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !a.Equal(b) || !b.Equal(c) {
		t.Errorf("locale variants disagree: %s, %s, %s", a, b, c)
	}
}
