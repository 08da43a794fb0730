package refresh

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SingleFlight collapses concurrent exchanges of the same refresh token into one provider
// call. Two requests racing the refresh of one session then share the result instead of
// spending the refresh token twice.
type SingleFlight struct {
	next  Exchanger
	group singleflight.Group
}

var _ Exchanger = (*SingleFlight)(nil)

// NewSingleFlight wraps next with in-flight deduplication.
func NewSingleFlight(next Exchanger) *SingleFlight {
	return &SingleFlight{next: next}
}

func (s *SingleFlight) Exchange(ctx context.Context, refreshToken string) (ExchangeResult, error) {
	v, err, _ := s.group.Do(refreshToken, func() (interface{}, error) {
		// The shared call must not be cut short by whichever caller arrived first.
		return s.next.Exchange(context.WithoutCancel(ctx), refreshToken)
	})
	if err != nil {
		return ExchangeResult{}, err
	}
	return v.(ExchangeResult), nil
}
