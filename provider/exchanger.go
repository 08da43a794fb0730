// Package provider adapts an OAuth2 provider's token endpoint to the refresh.Exchanger
// interface.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-session-keeper/internal/errors"
	oauthwire "github.com/jrsteele09/go-session-keeper/oauth2"
	"github.com/jrsteele09/go-session-keeper/token/refresh"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultTimeout = 10 * time.Second

// Config holds the provider credentials. It is built explicitly by the caller rather than
// read from the environment so tests can use fake credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	// TokenURL is the provider's token endpoint. When empty, it is discovered from Issuer.
	TokenURL string
	// Issuer is an OpenID Connect issuer URL used for discovery.
	Issuer string
	// Scopes are requested by the authorization layer at sign-in; refresh does not send them.
	Scopes []string
	// Timeout bounds a single exchange. A timed out exchange is a transport failure.
	Timeout time.Duration
	// HTTPClient overrides the client used for token requests.
	HTTPClient *http.Client
}

// Exchanger performs the refresh_token grant using golang.org/x/oauth2.
type Exchanger struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ refresh.Exchanger = (*Exchanger)(nil)

// Option configures an Exchanger.
type Option func(*Exchanger)

// WithLogger sets the logger rejected exchanges are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Exchanger) { e.logger = logger }
}

// NewExchanger creates an exchanger for cfg. If cfg has no TokenURL but an Issuer, the token
// endpoint is discovered first.
func NewExchanger(ctx context.Context, cfg Config, opts ...Option) (*Exchanger, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.Wrapf(errors.ErrMissingConfig, "provider: client id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		if strings.TrimSpace(cfg.Issuer) == "" {
			return nil, errors.Wrapf(errors.ErrMissingConfig, "provider: token url or issuer is required")
		}
		discovered, err := Discover(ctx, httpClient, cfg.Issuer)
		if err != nil {
			return nil, err
		}
		tokenURL = discovered
	}

	e := &Exchanger{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: append([]string(nil), cfg.Scopes...),
		},
		httpClient: httpClient,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// TokenURL returns the endpoint exchanges are sent to.
func (e *Exchanger) TokenURL() string {
	return e.oauth.Endpoint.TokenURL
}

// Exchange posts grant_type=refresh_token with the client credentials in the form body.
func (e *Exchanger) Exchange(ctx context.Context, refreshToken string) (refresh.ExchangeResult, error) {
	if refreshToken == "" {
		return refresh.ExchangeResult{}, errors.ErrMissingRefreshToken
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	tok, err := e.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return refresh.ExchangeResult{}, e.classify(err)
	}

	expiresIn, ok := expiresInSeconds(tok)
	if !ok {
		return refresh.ExchangeResult{}, errors.Wrapf(errors.ErrMalformedGrant, "provider: token response has no expires_in")
	}

	result := refresh.ExchangeResult{
		AccessToken: tok.AccessToken,
		ExpiresIn:   expiresIn,
	}
	if tok.RefreshToken != refreshToken {
		result.RefreshToken = tok.RefreshToken
	}
	return result, nil
}

func (e *Exchanger) classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		rejected := newRejectedError(retrieveErr)
		e.logger.Warn().
			Int("status", rejected.StatusCode).
			Str("error_code", rejected.Code).
			Str("error_description", rejected.Description).
			Msg("Token endpoint rejected refresh")
		return rejected
	}

	if isTransportError(err) {
		return fmt.Errorf("provider: %w: %w", errors.ErrExchangeTransport, err)
	}
	return fmt.Errorf("provider: %w: %w", errors.ErrMalformedGrant, err)
}

func isTransportError(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// expiresInSeconds reads expires_in from the raw token response; x/oauth2 only keeps the
// derived absolute expiry on the token itself.
func expiresInSeconds(tok *oauth2.Token) (int64, bool) {
	var seconds int64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		seconds = int64(math.Round(v))
	case int64:
		seconds = v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		seconds = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		seconds = n
	default:
		if tok.Expiry.IsZero() {
			return 0, false
		}
		seconds = int64(math.Round(time.Until(tok.Expiry).Seconds()))
	}
	return seconds, seconds > 0
}

// RejectedError is returned when the token endpoint answers with an error status or payload.
type RejectedError struct {
	StatusCode  int
	Code        string
	Description string
	Body        []byte
}

func newRejectedError(err *oauth2.RetrieveError) *RejectedError {
	rejected := &RejectedError{
		Code:        err.ErrorCode,
		Description: err.ErrorDescription,
		Body:        err.Body,
	}
	if err.Response != nil {
		rejected.StatusCode = err.Response.StatusCode
	}
	if rejected.Code == "" {
		if payload, ok := oauthwire.ParseErrorResponse(err.Body); ok {
			rejected.Code = payload.Error
			rejected.Description = payload.ErrorDescription
		}
	}
	return rejected
}

func (e *RejectedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider: token endpoint returned %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("provider: token endpoint returned %d", e.StatusCode)
}

func (e *RejectedError) Unwrap() error {
	return errors.ErrExchangeRejected
}

// IsInvalidGrant reports whether the provider no longer accepts the refresh token.
func (e *RejectedError) IsInvalidGrant() bool {
	return e.Code == oauthwire.ErrorInvalidGrant
}
