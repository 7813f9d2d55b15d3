package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/brightmill/storefront-insights/internal/catalog"
	"github.com/brightmill/storefront-insights/internal/dashboard/timerange"
	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/enums"
)

// Config tunes the fold.
type Config struct {
	// CountNonRevenueOrders keeps pending/processing/cancelled orders in the
	// order counts even though they never contribute revenue.
	CountNonRevenueOrders bool
}

// Output is the finalized aggregation for one window.
type Output struct {
	Buckets      []types.BucketSummary
	Products     []types.ProductSummary
	Categories   []types.CategorySummary
	Customers    []types.CustomerSummary
	Segments     []types.SegmentSummary
	TotalOrders  int64
	TotalRevenue decimal.Decimal
	Dropped      int64
}

type productAcc struct {
	views        int64
	carts        int64
	sales        int64
	revenueCents int64
	stock        int64
	stockAt      int64 // unix nanos of the latest stock event seen
	stockSeen    bool
}

type customerAcc struct {
	orders       int64
	revenueCents int64
}

// Aggregator folds a stream of events into per-bucket, per-product, and
// per-customer figures in a single forward pass. It carries no locks; one
// aggregator serves one query.
type Aggregator struct {
	interval timerange.Interval
	bucketer *timerange.Bucketer
	cfg      Config

	bucketOrders  []int64
	bucketRevenue []int64
	products      map[string]*productAcc
	customers     map[string]*customerAcc
	dropped       int64
}

// New builds an aggregator for the resolved window.
func New(interval timerange.Interval, bucketer *timerange.Bucketer, cfg Config) *Aggregator {
	return &Aggregator{
		interval:      interval,
		bucketer:      bucketer,
		cfg:           cfg,
		bucketOrders:  make([]int64, bucketer.Len()),
		bucketRevenue: make([]int64, bucketer.Len()),
		products:      map[string]*productAcc{},
		customers:     map[string]*customerAcc{},
	}
}

// Add folds one event. Malformed events are counted and dropped; events
// outside the half-open window are skipped silently. Add never fails, a bad
// event must not abort the query.
func (a *Aggregator) Add(ev types.Event) {
	occurredAt := ev.OccurredAt()
	if occurredAt.IsZero() || ev.ProductID() == "" {
		a.dropped++
		return
	}
	if !a.interval.Contains(occurredAt) {
		return
	}
	idx := a.bucketer.IndexOf(occurredAt)
	if idx < 0 {
		a.dropped++
		return
	}

	switch ev.Kind {
	case enums.EventKindOrderRecorded:
		a.addOrder(idx, ev.Order)
	case enums.EventKindProductViewed:
		a.product(ev.View.ProductID).views++
	case enums.EventKindCartAdded:
		a.product(ev.Cart.ProductID).carts++
	case enums.EventKindStockAdjusted:
		a.addStock(ev.Stock)
	default:
		a.dropped++
	}
}

func (a *Aggregator) addOrder(idx int, order *types.OrderEvent) {
	if !order.Status.IsValid() || order.Quantity < 0 || order.AmountCents < 0 {
		a.dropped++
		return
	}

	counts := order.Status.CountsAsRevenue()
	if !counts && !a.cfg.CountNonRevenueOrders {
		return
	}

	a.bucketOrders[idx]++

	cust := a.customer(order.CustomerID)
	cust.orders++

	prod := a.product(order.ProductID)
	if counts {
		a.bucketRevenue[idx] += order.AmountCents
		prod.sales += order.Quantity
		prod.revenueCents += order.AmountCents
		cust.revenueCents += order.AmountCents
	}
}

// addStock keeps the latest stock level by event timestamp so out-of-order
// pages still converge on the same answer.
func (a *Aggregator) addStock(stock *types.StockEvent) {
	prod := a.product(stock.ProductID)
	at := stock.OccurredAt.UnixNano()
	if prod.stockSeen && at < prod.stockAt {
		return
	}
	prod.stock = stock.ResultingStock
	prod.stockAt = at
	prod.stockSeen = true
}

func (a *Aggregator) product(id string) *productAcc {
	if acc, ok := a.products[id]; ok {
		return acc
	}
	acc := &productAcc{}
	a.products[id] = acc
	return acc
}

func (a *Aggregator) customer(id string) *customerAcc {
	if id == "" {
		id = "unknown"
	}
	if acc, ok := a.customers[id]; ok {
		return acc
	}
	acc := &customerAcc{}
	a.customers[id] = acc
	return acc
}

// ProductIDs returns every product the fold has touched so far.
func (a *Aggregator) ProductIDs() []string {
	ids := make([]string, 0, len(a.products))
	for id := range a.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dropped returns the running dropped-event count.
func (a *Aggregator) Dropped() int64 {
	return a.dropped
}

// Finalize joins the folded figures against the catalog and produces the
// deterministic output. Products the catalog does not know keep their ID as
// the display name and land in the Uncategorized rollup.
func (a *Aggregator) Finalize(products map[string]catalog.Product) *Output {
	out := &Output{
		Buckets:      make([]types.BucketSummary, a.bucketer.Len()),
		TotalRevenue: decimal.Zero,
	}

	for i, bounds := range a.bucketer.Buckets() {
		out.Buckets[i] = types.BucketSummary{
			BucketStart: bounds.Start,
			BucketEnd:   bounds.End,
			OrderCount:  a.bucketOrders[i],
			Revenue:     centsToDecimal(a.bucketRevenue[i]),
		}
		out.TotalOrders += a.bucketOrders[i]
	}

	var totalCents int64
	categoryCents := map[string]int64{}

	for _, id := range a.ProductIDs() {
		acc := a.products[id]

		name := id
		category := catalog.Uncategorized
		if p, ok := products[id]; ok {
			if p.Name != "" {
				name = p.Name
			}
			if p.Category != "" {
				category = p.Category
			}
		}

		conversion := 0.0
		if acc.views > 0 {
			conversion = float64(acc.sales) / float64(acc.views)
		}

		out.Products = append(out.Products, types.ProductSummary{
			ProductID:      id,
			Name:           name,
			Views:          acc.views,
			AddToCarts:     acc.carts,
			Sales:          acc.sales,
			Revenue:        centsToDecimal(acc.revenueCents),
			ConversionRate: conversion,
			CurrentStock:   acc.stock,
		})

		categoryCents[category] += acc.revenueCents
		totalCents += acc.revenueCents
	}

	out.TotalRevenue = centsToDecimal(totalCents)
	out.Categories = rollupCategories(categoryCents, totalCents)
	out.Customers, out.Segments = rollupCustomers(a.customers)
	out.Dropped = a.dropped
	return out
}

func rollupCategories(cents map[string]int64, totalCents int64) []types.CategorySummary {
	out := make([]types.CategorySummary, 0, len(cents))
	for category, amount := range cents {
		share := 0.0
		if totalCents > 0 {
			share = float64(amount) / float64(totalCents)
		}
		out = append(out, types.CategorySummary{
			Category: category,
			Revenue:  centsToDecimal(amount),
			Share:    share,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func rollupCustomers(accs map[string]*customerAcc) ([]types.CustomerSummary, []types.SegmentSummary) {
	customers := make([]types.CustomerSummary, 0, len(accs))
	segTotals := map[enums.CustomerSegment]*types.SegmentSummary{
		enums.SegmentOneTime: {Segment: enums.SegmentOneTime, Revenue: decimal.Zero},
		enums.SegmentRepeat:  {Segment: enums.SegmentRepeat, Revenue: decimal.Zero},
	}

	for id, acc := range accs {
		if acc.orders == 0 {
			continue
		}
		revenue := centsToDecimal(acc.revenueCents)
		customers = append(customers, types.CustomerSummary{
			CustomerID: id,
			Orders:     acc.orders,
			Revenue:    revenue,
		})

		segment := enums.SegmentOneTime
		if acc.orders > 1 {
			segment = enums.SegmentRepeat
		}
		seg := segTotals[segment]
		seg.Customers++
		seg.Orders += acc.orders
		seg.Revenue = seg.Revenue.Add(revenue)
	}

	sort.Slice(customers, func(i, j int) bool {
		if !customers[i].Revenue.Equal(customers[j].Revenue) {
			return customers[i].Revenue.GreaterThan(customers[j].Revenue)
		}
		return customers[i].CustomerID < customers[j].CustomerID
	})

	segments := []types.SegmentSummary{
		*segTotals[enums.SegmentOneTime],
		*segTotals[enums.SegmentRepeat],
	}
	return customers, segments
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
