package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	ProviderConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// ProviderConfig carries the OAuth client registration at the token provider.
type ProviderConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetTokenURL() string
	GetIssuer() string
	GetScopes() []string
	GetTokenRequestTimeout() time.Duration
}

// SessionConfig controls how the session pipeline carries credential records between requests.
type SessionConfig interface {
	GetSessionStrategy() SessionStrategy
	GetSessionSecret() string
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
	GetRedisAddr() string
	GetSingleFlight() bool
}

type mainConfig struct {
	EnvVars
	Cors
	Provider
	Session
}

func New() Config {
	return mainConfig{}
}
