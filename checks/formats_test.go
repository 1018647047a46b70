package checks_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/japi/checks"
)

func durp(d time.Duration) *time.Duration { return &d }

func TestRFC3339Check(t *testing.T) {
	ctx := context.Background()
	want := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	out, err := checks.RFC3339{}.Check(ctx, "2026-08-21T10:00:00Z")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got := out.(time.Time); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	out, err = checks.RFC3339{}.Check(ctx, "2026-08-21T12:00:00.25+02:00")
	if err != nil {
		t.Fatalf("fractional seconds: %v", err)
	}
	if got := out.(time.Time); !got.Equal(want.Add(250 * time.Millisecond)) {
		t.Fatalf("fractional seconds parsed to %v", got)
	}

	// Native times pass through untouched.
	if out, err = (checks.RFC3339{}).Check(ctx, want); err != nil || !out.(time.Time).Equal(want) {
		t.Fatalf("passthrough: %v, %v", out, err)
	}

	_, err = checks.RFC3339{}.Check(ctx, "yesterday")
	if d, _ := detail(t, err); d != "Not a valid RFC 3339 date-time." {
		t.Fatalf("bad string: %q", d)
	}
	_, err = checks.RFC3339{}.Check(ctx, 5)
	if d, _ := detail(t, err); d != "Must be a date-time string." {
		t.Fatalf("non-string: %q", d)
	}
}

func TestRFC3339DateOnly(t *testing.T) {
	ctx := context.Background()
	c := checks.RFC3339{DateOnly: true}

	out, err := c.Check(ctx, "2026-08-21")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	if got := out.(time.Time); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	_, err = c.Check(ctx, "2026-08-21T10:00:00Z")
	if d, _ := detail(t, err); d != "Not a valid RFC 3339 date (expected YYYY-MM-DD)." {
		t.Fatalf("datetime for date: %q", d)
	}
	_, err = c.Check(ctx, nil)
	if d, _ := detail(t, err); d != "Must be a date string." {
		t.Fatalf("non-string: %q", d)
	}
}

func TestFormatRFC3339(t *testing.T) {
	ts := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	if got := checks.FormatRFC3339(ts, false); got != "2026-08-21T10:00:00Z" {
		t.Fatalf("date-time form = %q", got)
	}
	if got := checks.FormatRFC3339(ts, true); got != "2026-08-21" {
		t.Fatalf("date form = %q", got)
	}
}

func TestSecondsCheck(t *testing.T) {
	ctx := context.Background()

	out, err := checks.Seconds{}.Check(ctx, json.Number("90"))
	if err != nil || out != 90*time.Second {
		t.Fatalf("whole seconds: %v, %v", out, err)
	}
	out, err = checks.Seconds{}.Check(ctx, json.Number("1.5"))
	if err != nil || out != 1500*time.Millisecond {
		t.Fatalf("fractional seconds: %v, %v", out, err)
	}
	out, err = checks.Seconds{}.Check(ctx, 3*time.Hour)
	if err != nil || out != 3*time.Hour {
		t.Fatalf("passthrough: %v, %v", out, err)
	}

	_, err = checks.Seconds{}.Check(ctx, "90")
	if d, wrongType := detail(t, err); d != "Must be a number." || !wrongType {
		t.Fatalf("non-number: %q wrongType=%v", d, wrongType)
	}

	_, err = checks.Seconds{Min: durp(2 * time.Minute)}.Check(ctx, json.Number("30"))
	if d, _ := detail(t, err); d != "The timedelta must be >= 2m0s." {
		t.Fatalf("min: %q", d)
	}
	_, err = checks.Seconds{Max: durp(time.Hour)}.Check(ctx, json.Number("7200"))
	if d, _ := detail(t, err); d != "The timedelta must be <= 1h0m0s." {
		t.Fatalf("max: %q", d)
	}
}

func TestComplexPairCheck(t *testing.T) {
	ctx := context.Background()
	c := checks.ComplexPair()

	out, err := c.Check(ctx, map[string]any{"real": json.Number("1.5"), "imag": json.Number("-2")})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if out != complex(1.5, -2) {
		t.Fatalf("got %v", out)
	}
	if out, err = c.Check(ctx, complex(0, 1)); err != nil || out != complex(0, 1) {
		t.Fatalf("passthrough: %v, %v", out, err)
	}

	tests := []struct {
		name       string
		in         any
		wantDetail string
		wantMember string
	}{
		{name: "not an object", in: 5, wantDetail: "Must be an object with a 'real' and 'imag' member."},
		{name: "no real", in: map[string]any{"imag": json.Number("1")}, wantDetail: "Does not have a 'real' member."},
		{name: "no imag", in: map[string]any{"real": json.Number("1")}, wantDetail: "Does not have an 'imag' member."},
		{
			name:       "real not a number",
			in:         map[string]any{"real": "one", "imag": json.Number("1")},
			wantDetail: "The real part must be a number.",
			wantMember: "real",
		},
		{
			name:       "imag not a number",
			in:         map[string]any{"real": json.Number("1"), "imag": true},
			wantDetail: "The imaginary part must be a number.",
			wantMember: "imag",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Check(ctx, tt.in)
			ce, ok := checks.AsError(err)
			if !ok {
				t.Fatalf("expected *checks.Error, got %v", err)
			}
			if ce.Detail != tt.wantDetail || ce.Member != tt.wantMember {
				t.Fatalf("got %q member %q, want %q member %q", ce.Detail, ce.Member, tt.wantDetail, tt.wantMember)
			}
		})
	}
}

func TestFractionCheck(t *testing.T) {
	ctx := context.Background()

	out, err := checks.Fraction{}.Check(ctx, map[string]any{
		"numerator":   json.Number("3"),
		"denominator": json.Number("4"),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if r := out.(*big.Rat); r.Cmp(big.NewRat(3, 4)) != 0 {
		t.Fatalf("got %s", r.RatString())
	}

	half := big.NewRat(1, 2)
	if out, err = (checks.Fraction{}).Check(ctx, half); err != nil || out != half {
		t.Fatalf("passthrough: %v, %v", out, err)
	}

	tests := []struct {
		name       string
		checker    checks.Fraction
		in         any
		wantDetail string
		wantMember string
	}{
		{name: "not an object", in: "3/4", wantDetail: "Must be an object with a 'numerator' and 'denominator' member."},
		{name: "no numerator", in: map[string]any{"denominator": json.Number("4")}, wantDetail: "Does not have a 'numerator' member."},
		{name: "no denominator", in: map[string]any{"numerator": json.Number("3")}, wantDetail: "Does not have a 'denominator' member."},
		{
			name:       "numerator not integral",
			in:         map[string]any{"numerator": json.Number("1.5"), "denominator": json.Number("4")},
			wantDetail: "The numerator must be an integer.",
			wantMember: "numerator",
		},
		{
			name:       "denominator not integral",
			in:         map[string]any{"numerator": json.Number("3"), "denominator": "four"},
			wantDetail: "The denominator must be an integer.",
			wantMember: "denominator",
		},
		{
			name:       "zero denominator",
			in:         map[string]any{"numerator": json.Number("3"), "denominator": json.Number("0")},
			wantDetail: "The denominator must be not equal to zero.",
			wantMember: "denominator",
		},
		{
			name:       "below min",
			checker:    checks.Fraction{Min: big.NewRat(1, 2)},
			in:         map[string]any{"numerator": json.Number("1"), "denominator": json.Number("4")},
			wantDetail: "Must be >= 1/2.",
		},
		{
			name:       "above max",
			checker:    checks.Fraction{Max: big.NewRat(1, 1)},
			in:         map[string]any{"numerator": json.Number("3"), "denominator": json.Number("2")},
			wantDetail: "Must be <= 1.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.checker.Check(ctx, tt.in)
			ce, ok := checks.AsError(err)
			if !ok {
				t.Fatalf("expected *checks.Error, got %v", err)
			}
			if ce.Detail != tt.wantDetail || ce.Member != tt.wantMember {
				t.Fatalf("got %q member %q, want %q member %q", ce.Detail, ce.Member, tt.wantDetail, tt.wantMember)
			}
		})
	}
}

func TestUUIDCheck(t *testing.T) {
	ctx := context.Background()
	want := uuid.MustParse("16fd2706-8baf-433b-82eb-8c7fada847da")

	out, err := checks.UUID{}.Check(ctx, "16fd2706-8baf-433b-82eb-8c7fada847da")
	if err != nil || out != want {
		t.Fatalf("dashed: %v, %v", out, err)
	}
	// The bare hexadecimal form is equally valid.
	out, err = checks.UUID{}.Check(ctx, "16fd27068baf433b82eb8c7fada847da")
	if err != nil || out != want {
		t.Fatalf("undashed: %v, %v", out, err)
	}
	if out, err = (checks.UUID{}).Check(ctx, want); err != nil || out != want {
		t.Fatalf("passthrough: %v, %v", out, err)
	}

	if _, err = (checks.UUID{Version: 4}).Check(ctx, want.String()); err != nil {
		t.Fatalf("version pin: %v", err)
	}
	_, err = checks.UUID{Version: 1}.Check(ctx, want.String())
	if d, _ := detail(t, err); d != "Not a UUID1." {
		t.Fatalf("version mismatch: %q", d)
	}

	_, err = checks.UUID{}.Check(ctx, 7)
	if d, wrongType := detail(t, err); d != "The UUID must be a hexadecimal string." || !wrongType {
		t.Fatalf("non-string: %q wrongType=%v", d, wrongType)
	}
	_, err = checks.UUID{}.Check(ctx, "not-a-uuid")
	if d, _ := detail(t, err); d != "The UUID is badly formed (the representation as hexadecimal string is needed)." {
		t.Fatalf("malformed: %q", d)
	}
}

func TestURLCheck(t *testing.T) {
	ctx := context.Background()

	out, err := checks.URL().Check(ctx, "https://example.com/a?b=1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if u := out.(*url.URL); u.Host != "example.com" || u.Path != "/a" {
		t.Fatalf("parsed %v", u)
	}

	u := &url.URL{Scheme: "https", Host: "example.com"}
	if out, err = checks.URL().Check(ctx, u); err != nil || out != u {
		t.Fatalf("passthrough: %v, %v", out, err)
	}

	_, err = checks.URL().Check(ctx, 7)
	if d, wrongType := detail(t, err); d != "Must be a string." || !wrongType {
		t.Fatalf("non-string: %q wrongType=%v", d, wrongType)
	}
	_, err = checks.URL().Check(ctx, "://missing-scheme")
	if d, _ := detail(t, err); d != "Not a valid URI." {
		t.Fatalf("malformed: %q", d)
	}
}

func TestEmailCheck(t *testing.T) {
	ctx := context.Background()

	out, err := checks.Email().Check(ctx, "user@example.com")
	if err != nil || out != "user@example.com" {
		t.Fatalf("Check: %v, %v", out, err)
	}

	for _, bad := range []string{
		"not-an-email",
		"Someone <user@example.com>",
		"<user@example.com>",
	} {
		_, err = checks.Email().Check(ctx, bad)
		if d, _ := detail(t, err); d != "Not a valid Email address." {
			t.Fatalf("%q: %q", bad, d)
		}
	}

	_, err = checks.Email().Check(ctx, 7)
	if d, wrongType := detail(t, err); d != "Must be a string." || !wrongType {
		t.Fatalf("non-string: %q wrongType=%v", d, wrongType)
	}
}
