package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/brightmill/storefront-insights/internal/catalog"
	"github.com/brightmill/storefront-insights/internal/dashboard/aggregate"
	"github.com/brightmill/storefront-insights/internal/dashboard/alert"
	"github.com/brightmill/storefront-insights/internal/dashboard/rank"
	"github.com/brightmill/storefront-insights/internal/dashboard/timerange"
	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/internal/eventstore"
	"github.com/brightmill/storefront-insights/pkg/config"
	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
	"github.com/brightmill/storefront-insights/pkg/logger"
	"github.com/brightmill/storefront-insights/pkg/metrics"
)

// maxCustomerRows bounds the per-customer list in the result. The rollups
// stay complete; only the listed rows are clipped.
const maxCustomerRows = 1000

// Runner is the query facade surface.
type Runner interface {
	Run(ctx context.Context, q types.Query) (*types.Result, error)
}

// Service composes range resolution, the event scan, aggregation, ranking,
// and alerting into one dashboard query. It is stateless per call and safe
// for concurrent use.
type Service struct {
	store    eventstore.Store
	products catalog.Lookup
	queryCfg config.QueryConfig
	alertCfg config.AlertsConfig
	logg     *logger.Logger
	metrics  *metrics.QueryMetrics
	clock    func() time.Time
}

// NewService wires the facade.
func NewService(
	store eventstore.Store,
	products catalog.Lookup,
	queryCfg config.QueryConfig,
	alertCfg config.AlertsConfig,
	logg *logger.Logger,
	queryMetrics *metrics.QueryMetrics,
) (*Service, error) {
	if store == nil {
		return nil, errors.New("event store is required")
	}
	if products == nil {
		return nil, errors.New("catalog lookup is required")
	}
	return &Service{
		store:    store,
		products: products,
		queryCfg: queryCfg,
		alertCfg: alertCfg,
		logg:     logg,
		metrics:  queryMetrics,
		clock:    time.Now,
	}, nil
}

// WithClock overrides the reference clock, used by tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Run executes one dashboard query.
func (s *Service) Run(ctx context.Context, q types.Query) (*types.Result, error) {
	started := time.Now()
	result, err := s.run(ctx, q)

	s.metrics.ObserveDuration(string(q.Range), time.Since(started))
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(string(q.Range), string(code))
		return nil, err
	}
	s.metrics.IncSuccess(string(q.Range))
	s.metrics.AddDroppedEvents(int(result.Diagnostics.DroppedEvents))
	return result, nil
}

func (s *Service) run(ctx context.Context, q types.Query) (*types.Result, error) {
	loc, err := s.location(q.Timezone)
	if err != nil {
		return nil, err
	}

	reference := q.Reference
	if reference.IsZero() {
		reference = s.clock()
	}

	interval, bucketer, err := timerange.Resolve(q.Range, q.From, q.To, reference, loc)
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithRange(ctx, string(q.Range), interval.Start, interval.End)
	}

	agg, err := s.aggregateWindow(ctx, interval, bucketer)
	if err != nil {
		return nil, err
	}

	var compErrs error

	products, lookupErr := s.products.Products(ctx, agg.ProductIDs())
	if lookupErr != nil {
		compErrs = multierr.Append(compErrs, fmt.Errorf("catalog lookup failed, products left uncategorized: %w", lookupErr))
		products = nil
	}
	out := agg.Finalize(products)

	result := &types.Result{
		Start:             interval.Start,
		End:               interval.End,
		Granularity:       bucketer.Granularity(),
		Buckets:           out.Buckets,
		ProductSummaries:  out.Products,
		CategorySummaries: out.Categories,
		Customers:         out.Customers,
		Segments:          out.Segments,
		TotalOrders:       out.TotalOrders,
		TotalRevenue:      out.TotalRevenue,
	}
	result.Diagnostics.DroppedEvents = out.Dropped

	// ranking failure keeps the summaries in their default productId order
	if q.SortField != "" {
		if rankErr := rank.Sort(result.ProductSummaries, q.SortField, q.SortDirection); rankErr != nil {
			compErrs = multierr.Append(compErrs, fmt.Errorf("ranking skipped: %w", rankErr))
		}
	}

	// alerting failure leaves the alert section empty
	if len(q.AlertThresholds) > 0 {
		alerts, alertErr := alert.Evaluate(result.ProductSummaries, q.AlertThresholds, s.alertRatios(q))
		if alertErr != nil {
			compErrs = multierr.Append(compErrs, fmt.Errorf("alert evaluation skipped: %w", alertErr))
		} else {
			result.Alerts = alerts
		}
	}

	if q.ComparePrevious {
		growth, growthErr := s.compareWindows(ctx, interval, loc, out)
		if growthErr != nil {
			if typed := pkgerrors.As(growthErr); typed != nil && typed.Code() == pkgerrors.CodeCancelled {
				return nil, growthErr
			}
			compErrs = multierr.Append(compErrs, fmt.Errorf("previous-period comparison skipped: %w", growthErr))
		} else {
			result.Growth = growth
		}
	}

	if len(result.Customers) > maxCustomerRows {
		result.Customers = result.Customers[:maxCustomerRows]
		result.Diagnostics.Truncated = true
	}

	for _, componentErr := range multierr.Errors(compErrs) {
		result.Diagnostics.Notes = append(result.Diagnostics.Notes, componentErr.Error())
		if s.logg != nil {
			s.logg.Warn(ctx, componentErr.Error())
		}
	}

	return result, nil
}

func (s *Service) aggregateWindow(ctx context.Context, interval timerange.Interval, bucketer *timerange.Bucketer) (*aggregate.Aggregator, error) {
	agg := aggregate.New(interval, bucketer, aggregate.Config{
		CountNonRevenueOrders: s.queryCfg.CountNonRevenueOrders,
	})

	err := s.store.Stream(ctx, interval, func(ev types.Event) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCancelled, ctxErr, "query cancelled")
		}
		agg.Add(ev)
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "streaming events")
	}
	return agg, nil
}

// compareWindows aggregates the equal-length window immediately before the
// current one and derives growth percentages from the totals.
func (s *Service) compareWindows(ctx context.Context, interval timerange.Interval, loc *time.Location, current *aggregate.Output) (*types.Growth, error) {
	previous := interval.Previous()

	_, bucketer, err := timerange.Resolve(enums.RangeCustom, previous.Start, previous.End, previous.End, loc)
	if err != nil {
		return nil, err
	}

	agg, err := s.aggregateWindow(ctx, previous, bucketer)
	if err != nil {
		return nil, err
	}
	prev := agg.Finalize(nil)

	currentRevenue, _ := current.TotalRevenue.Float64()
	previousRevenue, _ := prev.TotalRevenue.Float64()

	return &types.Growth{
		PreviousStart:   previous.Start,
		PreviousEnd:     previous.End,
		PreviousOrders:  prev.TotalOrders,
		PreviousRevenue: prev.TotalRevenue,
		OrdersPct:       pctChange(float64(prev.TotalOrders), float64(current.TotalOrders)),
		RevenuePct:      pctChange(previousRevenue, currentRevenue),
	}, nil
}

func (s *Service) alertRatios(q types.Query) alert.Ratios {
	ratios := alert.Ratios{
		Critical: s.alertCfg.CriticalRatio,
		Warning:  s.alertCfg.WarningRatio,
	}
	if ratios.Critical == 0 && ratios.Warning == 0 {
		ratios = alert.DefaultRatios
	}
	if q.AlertRatios != nil {
		ratios = alert.Ratios{Critical: q.AlertRatios.Critical, Warning: q.AlertRatios.Warning}
	}
	return ratios
}

func (s *Service) location(name string) (*time.Location, error) {
	if name == "" {
		name = s.queryCfg.DefaultTimezone
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown timezone").
			WithDetails(map[string]string{"timezone": name})
	}
	return loc, nil
}

// pctChange returns the signed percent change from prev to cur. A zero
// baseline reports 100 when anything appeared, 0 otherwise.
func pctChange(prev, cur float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return (cur - prev) / prev * 100
}

var _ Runner = (*Service)(nil)
