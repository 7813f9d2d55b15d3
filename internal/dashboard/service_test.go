package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brightmill/storefront-insights/internal/catalog"
	"github.com/brightmill/storefront-insights/internal/dashboard/timerange"
	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/internal/eventstore"
	"github.com/brightmill/storefront-insights/pkg/config"
	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
	"github.com/brightmill/storefront-insights/pkg/logger"
)

var testReference = time.Date(2026, time.June, 12, 12, 0, 0, 0, time.UTC) // a Friday

func newTestService(t *testing.T, store eventstore.Store, lookup catalog.Lookup) *Service {
	t.Helper()
	if lookup == nil {
		lookup = catalog.NewMemory()
	}
	svc, err := NewService(
		store,
		lookup,
		config.QueryConfig{DefaultTimezone: "UTC", CountNonRevenueOrders: true},
		config.AlertsConfig{CriticalRatio: 0.25, WarningRatio: 1.0},
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		nil,
	)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc.WithClock(func() time.Time { return testReference })
}

func order(product, customer string, cents int64, at time.Time, status enums.OrderStatus) types.Event {
	return types.Event{
		Kind: enums.EventKindOrderRecorded,
		Order: &types.OrderEvent{
			ID:          "o-" + product,
			ProductID:   product,
			CustomerID:  customer,
			AmountCents: cents,
			Quantity:    1,
			OccurredAt:  at,
			Status:      status,
		},
	}
}

func view(product string, at time.Time) types.Event {
	return types.Event{
		Kind: enums.EventKindProductViewed,
		View: &types.ViewEvent{ProductID: product, OccurredAt: at},
	}
}

func stock(product string, level int64, at time.Time) types.Event {
	return types.Event{
		Kind:  enums.EventKindStockAdjusted,
		Stock: &types.StockEvent{ProductID: product, ResultingStock: level, OccurredAt: at},
	}
}

func TestRunWeekEndToEnd(t *testing.T) {
	friday := time.Date(2026, time.June, 12, 10, 0, 0, 0, time.UTC)

	store := eventstore.NewMemory(0)
	for i := 0; i < 5; i++ {
		store.Append(order("p1", "alice", 10000, friday.Add(time.Duration(i)*time.Minute), enums.OrderStatusCompleted))
	}
	store.Append(
		view("p1", friday),
		view("p1", friday),
		view("p2", friday),
		stock("p1", 2, friday),
		order("p2", "bob", 4000, friday, enums.OrderStatusShipped),
	)

	lookup := catalog.NewMemory(
		catalog.Product{ID: "p1", Name: "Kettle", Category: "Kitchen", MinStockThreshold: 10},
		catalog.Product{ID: "p2", Name: "Lamp", Category: "Lighting", MinStockThreshold: 5},
	)

	svc := newTestService(t, store, lookup)
	result, err := svc.Run(context.Background(), types.Query{
		Range:           enums.RangeWeek,
		SortField:       enums.SortFieldRevenue,
		SortDirection:   enums.SortDesc,
		AlertThresholds: map[string]int64{"p1": 10, "p2": 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Granularity != enums.GranularityDaily || len(result.Buckets) != 7 {
		t.Fatalf("expected 7 daily buckets, got %d (%s)", len(result.Buckets), result.Granularity)
	}
	if result.Buckets[4].OrderCount != 6 {
		t.Fatalf("expected 6 orders in the Friday bucket, got %d", result.Buckets[4].OrderCount)
	}
	if !result.TotalRevenue.Equal(decimal.NewFromInt(540)) {
		t.Fatalf("expected total revenue 540, got %s", result.TotalRevenue)
	}

	if len(result.ProductSummaries) != 2 || result.ProductSummaries[0].ProductID != "p1" {
		t.Fatalf("expected p1 ranked first by revenue, got %+v", result.ProductSummaries)
	}
	if result.ProductSummaries[0].Name != "Kettle" {
		t.Fatalf("catalog join missing: %+v", result.ProductSummaries[0])
	}

	// p1 at 2/10 is critical; p2 has no stock event so 0/5 is also critical
	if len(result.Alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %+v", result.Alerts)
	}
	if result.Alerts[0].Severity != enums.SeverityCritical {
		t.Fatalf("expected critical alert first, got %+v", result.Alerts[0])
	}

	if len(result.Diagnostics.Notes) != 0 || result.Diagnostics.DroppedEvents != 0 {
		t.Fatalf("clean run should carry no diagnostics, got %+v", result.Diagnostics)
	}
}

func TestRunCancelledReturnsNoPartialResult(t *testing.T) {
	store := eventstore.NewMemory(0)
	store.Append(view("p1", testReference))

	svc := newTestService(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Run(ctx, types.Query{Range: enums.RangeWeek})
	if result != nil {
		t.Fatalf("cancelled query must not return a partial result")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeCancelled {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
}

func TestRunRowCeiling(t *testing.T) {
	store := eventstore.NewMemory(3)
	for i := 0; i < 10; i++ {
		store.Append(view("p1", testReference.Add(time.Duration(i)*time.Minute)))
	}

	svc := newTestService(t, store, nil)
	_, err := svc.Run(context.Background(), types.Query{Range: enums.RangeWeek})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeQueryTooLarge {
		t.Fatalf("expected QUERY_TOO_LARGE, got %v", err)
	}
}

func TestAlertFailureIsComponentLocal(t *testing.T) {
	store := eventstore.NewMemory(0)
	store.Append(order("p1", "alice", 10000, testReference, enums.OrderStatusCompleted))

	svc := newTestService(t, store, nil)
	result, err := svc.Run(context.Background(), types.Query{
		Range:           enums.RangeWeek,
		AlertThresholds: map[string]int64{"p1": 10},
		AlertRatios:     &types.AlertRatios{Critical: 2.0, Warning: 0.5}, // invalid
	})
	if err != nil {
		t.Fatalf("alert failure must not fail the query: %v", err)
	}
	if len(result.Alerts) != 0 {
		t.Fatalf("failing alert section must stay empty, got %+v", result.Alerts)
	}
	if result.TotalOrders != 1 || len(result.Buckets) != 7 {
		t.Fatalf("buckets and summaries must stay valid")
	}
	if len(result.Diagnostics.Notes) != 1 || !strings.Contains(result.Diagnostics.Notes[0], "alert evaluation skipped") {
		t.Fatalf("expected a diagnostic note, got %+v", result.Diagnostics.Notes)
	}
}

func TestUnknownSortFieldKeepsDefaultOrder(t *testing.T) {
	store := eventstore.NewMemory(0)
	store.Append(
		order("p2", "alice", 20000, testReference, enums.OrderStatusCompleted),
		order("p1", "bob", 10000, testReference, enums.OrderStatusCompleted),
	)

	svc := newTestService(t, store, nil)
	result, err := svc.Run(context.Background(), types.Query{
		Range:     enums.RangeWeek,
		SortField: enums.SortField("popularity"),
	})
	if err != nil {
		t.Fatalf("rank failure must not fail the query: %v", err)
	}
	if result.ProductSummaries[0].ProductID != "p1" {
		t.Fatalf("summaries must keep productId order on rank failure, got %+v", result.ProductSummaries)
	}
	if len(result.Diagnostics.Notes) != 1 || !strings.Contains(result.Diagnostics.Notes[0], "ranking skipped") {
		t.Fatalf("expected a ranking note, got %+v", result.Diagnostics.Notes)
	}
}

func TestComparePreviousComputesGrowth(t *testing.T) {
	currentFriday := time.Date(2026, time.June, 12, 10, 0, 0, 0, time.UTC)
	previousFriday := currentFriday.AddDate(0, 0, -7)

	store := eventstore.NewMemory(0)
	store.Append(
		order("p1", "alice", 10000, previousFriday, enums.OrderStatusCompleted),
		order("p1", "alice", 10000, currentFriday, enums.OrderStatusCompleted),
		order("p1", "bob", 10000, currentFriday, enums.OrderStatusCompleted),
	)

	svc := newTestService(t, store, nil)
	result, err := svc.Run(context.Background(), types.Query{
		Range:           enums.RangeWeek,
		ComparePrevious: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Growth == nil {
		t.Fatalf("expected growth section")
	}
	if result.Growth.PreviousOrders != 1 {
		t.Fatalf("expected 1 previous order, got %d", result.Growth.PreviousOrders)
	}
	if result.Growth.OrdersPct != 100 {
		t.Fatalf("expected +100%% orders, got %f", result.Growth.OrdersPct)
	}
	if result.Growth.RevenuePct != 100 {
		t.Fatalf("expected +100%% revenue, got %f", result.Growth.RevenuePct)
	}
	if !result.Growth.PreviousEnd.Equal(result.Start) {
		t.Fatalf("previous window must abut the current one")
	}
}

func TestInvalidTimezone(t *testing.T) {
	svc := newTestService(t, eventstore.NewMemory(0), nil)
	_, err := svc.Run(context.Background(), types.Query{Range: enums.RangeWeek, Timezone: "Mars/Olympus"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

type failingStore struct{ err error }

func (f failingStore) Stream(context.Context, timerange.Interval, func(types.Event) error) error {
	return f.err
}

func TestStoreFailureMapsToStoreUnavailable(t *testing.T) {
	svc := newTestService(t, failingStore{err: errors.New("socket closed")}, nil)
	_, err := svc.Run(context.Background(), types.Query{Range: enums.RangeWeek})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStoreUnavailable {
		t.Fatalf("expected STORE_UNAVAILABLE, got %v", err)
	}
}

func TestCatalogFailureLeavesProductsUncategorized(t *testing.T) {
	store := eventstore.NewMemory(0)
	store.Append(order("p1", "alice", 10000, testReference, enums.OrderStatusCompleted))

	svc := newTestService(t, store, failingLookup{})
	result, err := svc.Run(context.Background(), types.Query{Range: enums.RangeWeek})
	if err != nil {
		t.Fatalf("catalog failure must not fail the query: %v", err)
	}
	if result.CategorySummaries[0].Category != catalog.Uncategorized {
		t.Fatalf("expected Uncategorized rollup, got %+v", result.CategorySummaries)
	}
	if len(result.Diagnostics.Notes) != 1 {
		t.Fatalf("expected a catalog note, got %+v", result.Diagnostics.Notes)
	}
}

type failingLookup struct{}

func (failingLookup) Products(context.Context, []string) (map[string]catalog.Product, error) {
	return nil, errors.New("connection refused")
}
