package eventstore

import (
	"context"
	"sort"
	"sync"

	"github.com/brightmill/storefront-insights/internal/dashboard/timerange"
	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

// Memory is an in-memory Store for tests and local development. Events are
// delivered in timestamp order.
type Memory struct {
	mu      sync.RWMutex
	events  []types.Event
	maxRows int
}

// NewMemory builds an empty memory store. maxRows <= 0 disables the ceiling.
func NewMemory(maxRows int) *Memory {
	return &Memory{maxRows: maxRows}
}

// Append adds events to the store.
func (m *Memory) Append(events ...types.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

// Stream delivers the windowed events in timestamp order, honoring ctx
// cancellation and the row ceiling the same way the BigQuery store does.
func (m *Memory) Stream(ctx context.Context, window timerange.Interval, fn func(types.Event) error) error {
	m.mu.RLock()
	snapshot := make([]types.Event, len(m.events))
	copy(snapshot, m.events)
	m.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].OccurredAt().Before(snapshot[j].OccurredAt())
	})

	rows := 0
	for _, ev := range snapshot {
		if err := ctx.Err(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCancelled, err, "event scan cancelled")
		}

		at := ev.OccurredAt()
		if !at.IsZero() && !window.Contains(at) {
			continue
		}

		rows++
		if m.maxRows > 0 && rows > m.maxRows {
			return pkgerrors.New(pkgerrors.CodeQueryTooLarge, "event scan exceeds the row ceiling").
				WithDetails(map[string]int{"rowCeiling": m.maxRows})
		}

		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

var _ Store = (*Memory)(nil)
