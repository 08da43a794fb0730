package credential

import "fmt"

// ErrorTag is the closed set of error conditions a record can carry.
// The zero value means no error.
type ErrorTag uint8

const (
	ErrorNone ErrorTag = iota
	// ErrorRefreshFailed unifies every refresh failure cause (transport, rejection,
	// malformed response). The session is still authenticated but its credential is stale.
	ErrorRefreshFailed
)

const refreshFailedWire = "RefreshAccessTokenError"

// IsSet reports whether t carries an error.
func (t ErrorTag) IsSet() bool {
	return t != ErrorNone
}

func (t ErrorTag) String() string {
	switch t {
	case ErrorNone:
		return ""
	case ErrorRefreshFailed:
		return refreshFailedWire
	default:
		return fmt.Sprintf("ErrorTag(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ErrorTag) MarshalText() ([]byte, error) {
	switch t {
	case ErrorNone, ErrorRefreshFailed:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("credential: unknown error tag %d", uint8(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ErrorTag) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*t = ErrorNone
	case refreshFailedWire:
		*t = ErrorRefreshFailed
	default:
		return fmt.Errorf("credential: unknown error tag %q", string(text))
	}
	return nil
}
