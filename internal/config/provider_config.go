package config

import "time"

const (
	clientIDVar     = "PROVIDER_CLIENT_ID"
	clientSecretVar = "PROVIDER_CLIENT_SECRET"
	tokenURLVar     = "PROVIDER_TOKEN_URL"
	issuerVar       = "PROVIDER_ISSUER"
	scopesVar       = "PROVIDER_SCOPES"
	timeoutVar      = "PROVIDER_TIMEOUT"

	defaultTokenURL = "https://accounts.spotify.com/api/token"
)

var defaultScopes = []string{
	"user-read-email",
	"user-read-private",
	"playlist-read-private",
	"streaming",
	"user-library-read",
	"user-library-modify",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-recently-played",
	"user-follow-read",
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

// GetClientSecret must never be logged.
func (Provider) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

// GetTokenURL returns the configured token endpoint. When only an issuer is configured it is
// empty and the endpoint is discovered instead.
func (p Provider) GetTokenURL() string {
	if p.GetIssuer() != "" {
		return GetEnv(tokenURLVar, "")
	}
	return GetEnv(tokenURLVar, defaultTokenURL)
}

func (Provider) GetIssuer() string {
	return GetEnv(issuerVar, "")
}

func (Provider) GetScopes() []string {
	return GetEnvList(scopesVar, defaultScopes)
}

func (Provider) GetTokenRequestTimeout() time.Duration {
	return GetEnvDuration(timeoutVar, 10*time.Second)
}
