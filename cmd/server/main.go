package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-session-keeper/internal/config"
	"github.com/jrsteele09/go-session-keeper/provider"
	"github.com/jrsteele09/go-session-keeper/server"
	"github.com/jrsteele09/go-session-keeper/server/loginsession"
	"github.com/jrsteele09/go-session-keeper/server/sessiontoken"
	"github.com/jrsteele09/go-session-keeper/token/refresh"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	maxRunAttempts = 5
	restartDelay   = 1 * time.Second
)

func main() {
	if err := supervise(run, maxRunAttempts, restartDelay); err != nil {
		log.Fatal().Err(err).Msg("Giving up on server")
	}
	log.Info().Msg("Server stopped")
}

// supervise calls run until it returns without error, waiting delay between failed runs.
// After attempts failures it returns the last error.
func supervise(run func() error, attempts int, delay time.Duration) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = run(); err == nil {
			return nil
		}
		log.Error().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).Msg("Error running server")
		if attempt < attempts {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("server failed %d times: %w", attempts, err)
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	handler, cleanup, err := newHandler(context.Background(), c)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{Addr: c.GetPort(), Handler: handler}
	stop := stopSignal()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(server)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	returnError = shutdown(server)
	return returnError
}

// newHandler wires the token provider, the lifecycle manager and the session carrier
// into the HTTP server.
func newHandler(ctx context.Context, c config.Config) (http.Handler, func(), error) {
	cleanup := func() {}

	exchanger, err := provider.NewExchanger(ctx, provider.Config{
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		TokenURL:     c.GetTokenURL(),
		Issuer:       c.GetIssuer(),
		Scopes:       c.GetScopes(),
		Timeout:      c.GetTokenRequestTimeout(),
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to create token exchanger: %w", err)
	}
	log.Info().Str("token_url", exchanger.TokenURL()).Msg("Token provider configured")

	var next refresh.Exchanger = exchanger
	if c.GetSingleFlight() {
		next = refresh.NewSingleFlight(exchanger)
	}
	manager := refresh.NewManager(next)

	carrier, cleanup, err := newSessionCarrier(c)
	if err != nil {
		return nil, cleanup, err
	}

	return server.New(c, manager, carrier), cleanup, nil
}

func newSessionCarrier(c config.SessionConfig) (server.SessionCarrier, func(), error) {
	cleanup := func() {}

	switch c.GetSessionStrategy() {
	case config.SessionStrategyStore:
		if c.GetRedisAddr() == "" {
			log.Info().Msg("Session store: in-memory")
			return server.NewStoreCarrier(loginsession.NewInMemoryLoginSessionRepo(), c.GetSessionCookieName(), c.GetMaxSessionAge()), cleanup, nil
		}

		client := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Err(err).Msg("Failed to close redis client")
			}
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Session store: redis")
		repo := loginsession.NewRedisLoginSessionRepo(client, "")
		return server.NewStoreCarrier(repo, c.GetSessionCookieName(), c.GetMaxSessionAge()), cleanup, nil

	default:
		codec, err := sessiontoken.NewCodec(c.GetSessionSecret(), "session-keeper", c.GetMaxSessionAge())
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create session codec: %w", err)
		}
		log.Info().Msg("Session store: encrypted cookie")
		return server.NewCookieCarrier(codec, c.GetSessionCookieName()), cleanup, nil
	}
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func stopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
