package eventstore

import (
	"context"

	"github.com/brightmill/storefront-insights/internal/dashboard/timerange"
	"github.com/brightmill/storefront-insights/internal/dashboard/types"
)

// Store streams decoded events for a half-open window. Events arrive in
// timestamp order within a page; cross-page ordering is not guaranteed, so
// consumers must tolerate out-of-order delivery.
type Store interface {
	Stream(ctx context.Context, window timerange.Interval, fn func(types.Event) error) error
}
