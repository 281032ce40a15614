// Package coerce turns loosely typed option values into the concrete types
// the archive pipeline works with.
package coerce

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Jan 02 2006 15:04:05 MST",
	"Mon Jan 02 2006 15:04:05 MST",
	time.DateTime,
	time.DateOnly,
}

// Dateify converts v into a time. A nil or zero value, or a value of an
// unrecognized type, yields the current time. Strings are parsed against a
// fixed set of layouts.
func Dateify(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Now(), nil
	case time.Time:
		if d.IsZero() {
			return time.Now(), nil
		}
		return d, nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Now(), nil
		}
		return *d, nil
	case string:
		if d == "" {
			return time.Now(), nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", d)
	default:
		return time.Now(), nil
	}
}

// Defaults fills every zero-valued field of dst from the sources, in order.
// Fields already set on dst are never overwritten.
func Defaults(dst any, srcs ...any) error {
	if dst == nil {
		return errors.New("defaults: destination is nil")
	}
	for _, src := range srcs {
		if src == nil {
			continue
		}
		if err := mergo.Merge(dst, src); err != nil {
			return fmt.Errorf("failed to apply defaults: %w", err)
		}
	}
	return nil
}
