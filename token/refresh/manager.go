package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-session-keeper/credential"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager decides, each time a session is materialized, whether the cached access token
// can be reused or must be refreshed, and folds the outcome back into a new record.
type Manager struct {
	exchanger Exchanger
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger refresh failures are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a lifecycle manager that refreshes through exchanger.
func NewManager(exchanger Exchanger, opts ...Option) *Manager {
	m := &Manager{
		exchanger: exchanger,
		now:       func() time.Time { return NowTimeFunc() },
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize returns the record the session should carry from now on.
//
// An initial sign-in with a grant always starts a fresh record. Otherwise a record whose
// access token has not expired is returned untouched, and an expired one is refreshed.
// Refresh failures never escape: they are logged and reported as ErrorRefreshFailed on
// an otherwise unchanged record.
func (m *Manager) Materialize(ctx context.Context, current credential.Record, isInitialSignIn bool, signIn *credential.SignIn) credential.Record {
	if isInitialSignIn && signIn != nil {
		return m.signIn(current, *signIn)
	}

	now := m.now()
	if current.ValidAt(now) {
		return current
	}

	return m.refresh(ctx, current, now)
}

// Project strips a record down to what may be shown to the client.
func (m *Manager) Project(rec credential.Record) credential.View {
	return Project(rec)
}

// Project is the stateless form of Manager.Project.
func Project(rec credential.Record) credential.View {
	return credential.View{
		Principal:   rec.Principal,
		AccessToken: rec.AccessToken,
		Error:       rec.Error,
	}
}

func (m *Manager) signIn(current credential.Record, in credential.SignIn) credential.Record {
	if err := in.Grant.Validate(); err != nil {
		m.logger.Err(err).Str("principal", in.Principal.ID).Msg("Initial sign-in grant rejected")
		failed := current
		failed.Principal = in.Principal
		failed.Error = credential.ErrorRefreshFailed
		return failed
	}

	return credential.Record{
		Principal:            in.Principal,
		AccessToken:          in.Grant.AccessToken,
		RefreshToken:         in.Grant.RefreshToken,
		AccessTokenExpiresAt: credential.ExpiryFrom(m.now(), in.Grant.ExpiresIn),
	}
}

func (m *Manager) refresh(ctx context.Context, current credential.Record, now time.Time) credential.Record {
	if current.RefreshToken == "" {
		return m.fail(current, errors.ErrMissingRefreshToken)
	}

	result, err := m.exchange(ctx, current.RefreshToken)
	if err != nil {
		return m.fail(current, err)
	}
	if result.AccessToken == "" || result.ExpiresIn <= 0 || result.ExpiresIn > credential.MaxExpiresIn {
		return m.fail(current, errors.Wrapf(errors.ErrMalformedGrant, "exchange returned access token %t, expires_in %d", result.AccessToken != "", result.ExpiresIn))
	}

	refreshed := current
	refreshed.AccessToken = result.AccessToken
	refreshed.AccessTokenExpiresAt = credential.ExpiryFrom(now, result.ExpiresIn)
	if result.RefreshToken != "" {
		refreshed.RefreshToken = result.RefreshToken
	}
	refreshed.Error = credential.ErrorNone

	m.logger.Debug().
		Str("principal", current.Principal.ID).
		Bool("rotated", refreshed.RefreshToken != current.RefreshToken).
		Time("expires_at", refreshed.ExpiresAt()).
		Msg("Access token refreshed")
	return refreshed
}

// exchange shields the manager from a panicking exchanger.
func (m *Manager) exchange(ctx context.Context, refreshToken string) (result ExchangeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exchanger panicked: %v", r)
		}
	}()
	return m.exchanger.Exchange(ctx, refreshToken)
}

func (m *Manager) fail(current credential.Record, cause error) credential.Record {
	m.logger.Err(errors.Join(errors.ErrRefreshFailed, cause)).
		Str("principal", current.Principal.ID).
		Str("refresh_token", credential.Fingerprint(current.RefreshToken)).
		Str("cause", classify(cause)).
		Msg("Failed to refresh access token")

	failed := current
	failed.Error = credential.ErrorRefreshFailed
	return failed
}

func classify(err error) string {
	switch {
	case errors.Is(err, errors.ErrExchangeTransport):
		return "transport"
	case errors.Is(err, errors.ErrExchangeRejected):
		return "rejected"
	case errors.Is(err, errors.ErrMalformedGrant):
		return "malformed"
	case errors.Is(err, errors.ErrMissingRefreshToken):
		return "missing_refresh_token"
	default:
		return "unknown"
	}
}
