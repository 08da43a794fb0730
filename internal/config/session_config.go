package config

import (
	"strings"
	"time"
)

// SessionStrategy selects where the credential record lives between requests.
type SessionStrategy string

const (
	// SessionStrategyJWT keeps the whole record in a signed cookie.
	SessionStrategyJWT SessionStrategy = "jwt"
	// SessionStrategyStore keeps a session id in the cookie and the record server-side.
	SessionStrategyStore SessionStrategy = "store"
)

const (
	sessionStrategyVar = "SESSION_STRATEGY"
	sessionSecretVar   = "SESSION_SECRET"
	sessionCookieVar   = "SESSION_COOKIE_NAME"
	sessionMaxAgeVar   = "SESSION_MAX_AGE"
	redisAddrVar       = "REDIS_ADDR"
	singleFlightVar    = "SESSION_SINGLE_FLIGHT"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionStrategy() SessionStrategy {
	switch SessionStrategy(strings.ToLower(GetEnv(sessionStrategyVar, string(SessionStrategyJWT)))) {
	case SessionStrategyStore:
		return SessionStrategyStore
	default:
		return SessionStrategyJWT
	}
}

// GetSessionSecret signs session cookies. It must never be logged.
func (Session) GetSessionSecret() string {
	return GetEnv(sessionSecretVar, "")
}

func (Session) GetSessionCookieName() string {
	return GetEnv(sessionCookieVar, "session_token")
}

func (Session) GetMaxSessionAge() time.Duration {
	return GetEnvDuration(sessionMaxAgeVar, 30*24*time.Hour)
}

// GetRedisAddr is empty when the store strategy should keep sessions in memory.
func (Session) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (Session) GetSingleFlight() bool {
	return GetEnvBool(singleFlightVar, true)
}
