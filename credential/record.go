package credential

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-session-keeper/internal/errors"
)

// Principal is the signed-in end user a credential belongs to.
// Only the public profile is kept; it is exposed verbatim through the session view.
type Principal struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Record is the access/refresh token pair held for a principal's session.
// Records are values: the lifecycle manager never mutates one in place, it returns a new one.
type Record struct {
	// Principal is set once at initial sign-in and carried unchanged through refreshes.
	Principal Principal `json:"user"`

	// AccessToken is presented to the resource server.
	// Non-empty while Error is unset.
	AccessToken string `json:"accessToken"`

	// RefreshToken is exchanged for a new access token once AccessToken expires.
	// Kept across refreshes unless the provider rotates it.
	RefreshToken string `json:"refreshToken"`

	// AccessTokenExpiresAt is the absolute expiry of AccessToken in epoch milliseconds.
	AccessTokenExpiresAt int64 `json:"accessTokenExpires"`

	// Error is set after a failed refresh and cleared by the next successful one.
	Error ErrorTag `json:"error,omitempty"`
}

// State is the lifecycle position of a record at a point in time.
type State int

const (
	StateFresh State = iota
	StateExpired
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateExpired:
		return "expired"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Validate reports whether the record is well-formed: a refresh token is always present and,
// unless the record carries an error tag, so are an access token and a positive expiry.
func (r Record) Validate() error {
	if r.RefreshToken == "" {
		return errors.Wrapf(errors.ErrMalformedRecord, "refresh token is empty")
	}
	if r.Error.IsSet() {
		return nil
	}
	if r.AccessToken == "" {
		return errors.Wrapf(errors.ErrMalformedRecord, "access token is empty")
	}
	if r.AccessTokenExpiresAt <= 0 {
		return errors.Wrapf(errors.ErrMalformedRecord, "access token expiry %d is not positive", r.AccessTokenExpiresAt)
	}
	return nil
}

// StateAt derives the lifecycle state of the record at now.
func (r Record) StateAt(now time.Time) State {
	if r.Error.IsSet() {
		return StateErrored
	}
	if r.ValidAt(now) {
		return StateFresh
	}
	return StateExpired
}

// ValidAt reports whether the access token has not yet expired at now.
func (r Record) ValidAt(now time.Time) bool {
	return now.UnixMilli() < r.AccessTokenExpiresAt
}

// ExpiresAt returns the access token expiry as a time.Time.
func (r Record) ExpiresAt() time.Time {
	return time.UnixMilli(r.AccessTokenExpiresAt)
}

// MaxExpiresIn is the longest access token lifetime, in seconds, a grant may declare.
// Longer lifetimes are treated as malformed; they would also overflow the millisecond expiry.
const MaxExpiresIn int64 = 366 * 24 * 60 * 60

// ExpiryFrom returns the epoch-millisecond expiry for a token issued at now
// that lives for expiresIn seconds. expiresIn must not exceed MaxExpiresIn.
func ExpiryFrom(now time.Time, expiresIn int64) int64 {
	return now.UnixMilli() + expiresIn*1000
}
