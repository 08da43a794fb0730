package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
)

// Discover resolves the token endpoint of an OpenID Connect issuer from its
// /.well-known/openid-configuration document.
func Discover(ctx context.Context, client *http.Client, issuer string) (string, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("provider: discover %s: %w", issuer, err)
	}
	tokenURL := p.Endpoint().TokenURL
	if tokenURL == "" {
		return "", errors.Wrapf(errors.ErrMissingConfig, "provider: issuer %s publishes no token endpoint", issuer)
	}
	return tokenURL, nil
}
