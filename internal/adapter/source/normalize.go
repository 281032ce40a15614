package source

import (
	"fmt"
	"io"
)

// IsStream reports whether v can be consumed incrementally. The check is
// structural: any io.Reader qualifies, whatever its concrete type.
func IsStream(v any) bool {
	_, ok := v.(io.Reader)
	return ok
}

// Normalize converts src into a Value. Cases are checked in order: nil,
// string, stream, []byte. Streams are wrapped in a pass-through stage and
// the returned handle is never src itself.
func Normalize(src any) (Value, error) {
	switch s := src.(type) {
	case nil:
		return Value{buf: []byte{}}, nil
	case string:
		return Value{buf: []byte(s)}, nil
	case Value:
		return s, nil
	}

	if IsStream(src) {
		return Value{stream: newPassThrough(src.(io.Reader))}, nil
	}

	if b, ok := src.([]byte); ok {
		if b == nil {
			b = []byte{}
		}
		return Value{buf: b}, nil
	}

	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
}
