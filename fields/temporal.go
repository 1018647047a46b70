package fields

import (
	"context"
	"time"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/checks"
	js "github.com/reoring/japi/jsonschema"
)

// dateTimeAttr handles RFC 3339 date-time members; the native form is
// time.Time. With dateOnly set only a calendar date is accepted and
// emitted.
type dateTimeAttr struct {
	attr[dateTimeAttr]
	dateOnly bool
}

// DateTime declares an RFC 3339 date-time member.
func DateTime(name string) *dateTimeAttr {
	f := &dateTimeAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Date declares an RFC 3339 calendar-date member (YYYY-MM-DD).
func Date(name string) *dateTimeAttr {
	f := DateTime(name)
	f.dateOnly = true
	return f
}

func (f *dateTimeAttr) checker() checks.Checker {
	return checks.RFC3339{DateOnly: f.dateOnly}
}

func (f *dateTimeAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *dateTimeAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *dateTimeAttr) Serialize(ctx context.Context, native any) (any, error) {
	out, err := deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
	if err != nil || out == nil {
		return nil, err
	}
	return checks.FormatRFC3339(out.(time.Time), f.dateOnly), nil
}

func (f *dateTimeAttr) JSONSchema() (*js.Schema, error) {
	format := "date-time"
	if f.dateOnly {
		format = "date"
	}
	return nullable(&js.Schema{Type: "string", Format: format}, f.allowNone), nil
}

// timeDeltaAttr handles duration members carried as a number of seconds;
// the native form is time.Duration.
type timeDeltaAttr struct {
	attr[timeDeltaAttr]
	min, max *time.Duration
}

// TimeDelta declares a duration member.
func TimeDelta(name string) *timeDeltaAttr {
	f := &timeDeltaAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Min requires the duration to be >= d.
func (f *timeDeltaAttr) Min(d time.Duration) *timeDeltaAttr {
	f.min = &d
	f.assertBounds()
	return f
}

// Max requires the duration to be <= d.
func (f *timeDeltaAttr) Max(d time.Duration) *timeDeltaAttr {
	f.max = &d
	f.assertBounds()
	return f
}

func (f *timeDeltaAttr) assertBounds() {
	if f.min != nil && f.max != nil && *f.min > *f.max {
		panic("fields: timedelta min must be <= max")
	}
}

func (f *timeDeltaAttr) checker() checks.Checker {
	return checks.Seconds{Min: f.min, Max: f.max}
}

func (f *timeDeltaAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *timeDeltaAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *timeDeltaAttr) Serialize(ctx context.Context, native any) (any, error) {
	out, err := deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
	if err != nil || out == nil {
		return nil, err
	}
	return out.(time.Duration).Seconds(), nil
}

func (f *timeDeltaAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "number"}
	if f.min != nil {
		s.Minimum = float64Ptr(f.min.Seconds())
	}
	if f.max != nil {
		s.Maximum = float64Ptr(f.max.Seconds())
	}
	return nullable(s, f.allowNone), nil
}
