package credential

import (
	"github.com/jrsteele09/go-session-keeper/internal/errors"
)

// Grant is the token bundle issued by the provider after a successful
// authorization-code exchange.
type Grant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Validate reports ErrMalformedGrant when a required field is missing.
func (g Grant) Validate() error {
	if g.AccessToken == "" {
		return errors.Wrapf(errors.ErrMalformedGrant, "access_token is empty")
	}
	if g.RefreshToken == "" {
		return errors.Wrapf(errors.ErrMalformedGrant, "refresh_token is empty")
	}
	if g.ExpiresIn <= 0 {
		return errors.Wrapf(errors.ErrMalformedGrant, "expires_in %d is not positive", g.ExpiresIn)
	}
	if g.ExpiresIn > MaxExpiresIn {
		return errors.Wrapf(errors.ErrMalformedGrant, "expires_in %d exceeds %d", g.ExpiresIn, MaxExpiresIn)
	}
	return nil
}

// SignIn is handed over by the authorization layer once per new session.
type SignIn struct {
	Principal Principal
	Grant     Grant
}

// View is the client-facing projection of a record. It never carries the refresh token.
type View struct {
	Principal   Principal `json:"user"`
	AccessToken string    `json:"accessToken"`
	Error       ErrorTag  `json:"error,omitempty"`
}
