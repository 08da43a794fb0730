package exchangerfake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-session-keeper/token/refresh"
)

var _ refresh.Exchanger = (*FakeExchanger)(nil)

// FakeExchanger returns canned results and records every refresh token it was asked to exchange.
type FakeExchanger struct {
	lock     sync.Mutex
	result   refresh.ExchangeResult
	err      error
	exchange func(ctx context.Context, refreshToken string) (refresh.ExchangeResult, error)
	calls    []string
}

// NewFakeExchanger returns a fake that answers every call with result.
func NewFakeExchanger(result refresh.ExchangeResult) *FakeExchanger {
	return &FakeExchanger{result: result}
}

// NewFailingFakeExchanger returns a fake that fails every call with err.
func NewFailingFakeExchanger(err error) *FakeExchanger {
	if err == nil {
		err = errors.New("exchange failed")
	}
	return &FakeExchanger{err: err}
}

// NewFuncFakeExchanger returns a fake that delegates to fn.
func NewFuncFakeExchanger(fn func(ctx context.Context, refreshToken string) (refresh.ExchangeResult, error)) *FakeExchanger {
	return &FakeExchanger{exchange: fn}
}

func (f *FakeExchanger) Exchange(ctx context.Context, refreshToken string) (refresh.ExchangeResult, error) {
	f.lock.Lock()
	f.calls = append(f.calls, refreshToken)
	fn, result, err := f.exchange, f.result, f.err
	f.lock.Unlock()

	if fn != nil {
		return fn(ctx, refreshToken)
	}
	if err != nil {
		return refresh.ExchangeResult{}, err
	}
	return result, nil
}

// Calls returns how many exchanges were attempted.
func (f *FakeExchanger) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.calls)
}

// RefreshTokens returns the refresh tokens passed to Exchange, in call order.
func (f *FakeExchanger) RefreshTokens() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}
