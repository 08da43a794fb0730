package refresh

import "context"

// ExchangeResult is what the provider returned for a refresh_token grant.
type ExchangeResult struct {
	AccessToken string
	// RefreshToken is empty when the provider did not rotate the refresh token.
	RefreshToken string
	// ExpiresIn is the lifetime of AccessToken in seconds.
	ExpiresIn int64
}

// Exchanger performs the refresh_token grant against the provider's token endpoint.
// It is the only network dependency of the Manager.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (ExchangeResult, error)
}

// ExchangerFunc adapts a function to the Exchanger interface.
type ExchangerFunc func(ctx context.Context, refreshToken string) (ExchangeResult, error)

func (f ExchangerFunc) Exchange(ctx context.Context, refreshToken string) (ExchangeResult, error) {
	return f(ctx, refreshToken)
}
