package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brightmill/storefront-insights/pkg/enums"
)

// BucketSummary is one point of the dashboard time series. The bucket is the
// half-open interval [BucketStart, BucketEnd).
type BucketSummary struct {
	BucketStart time.Time       `json:"bucketStart"`
	BucketEnd   time.Time       `json:"bucketEnd"`
	OrderCount  int64           `json:"orderCount"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// ProductSummary carries the per-product figures a dashboard row displays.
type ProductSummary struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Views          int64           `json:"views"`
	AddToCarts     int64           `json:"addToCarts"`
	Sales          int64           `json:"sales"`
	Revenue        decimal.Decimal `json:"revenue"`
	ConversionRate float64         `json:"conversionRate"`
	CurrentStock   int64           `json:"currentStock"`
}

// CategorySummary is the revenue rollup per catalog category. Share is this
// category's fraction of total revenue in the window.
type CategorySummary struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Share    float64         `json:"share"`
}

// CustomerSummary is the per-customer rollup inside the window.
type CustomerSummary struct {
	CustomerID string          `json:"customerId"`
	Orders     int64           `json:"orders"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// SegmentSummary rolls customers up by purchase behavior.
type SegmentSummary struct {
	Segment   enums.CustomerSegment `json:"segment"`
	Customers int64                 `json:"customers"`
	Orders    int64                 `json:"orders"`
	Revenue   decimal.Decimal       `json:"revenue"`
}

// Alert is a low-stock alert for a product with a configured threshold.
type Alert struct {
	ProductID         string              `json:"productId"`
	CurrentStock      int64               `json:"currentStock"`
	MinStockThreshold int64               `json:"minStockThreshold"`
	Severity          enums.AlertSeverity `json:"severity"`
}

// Growth compares the current window against the equal-length window
// immediately before it. Percentages are signed; a zero previous value with
// a non-zero current value reports 100.
type Growth struct {
	PreviousStart   time.Time       `json:"previousStart"`
	PreviousEnd     time.Time       `json:"previousEnd"`
	PreviousOrders  int64           `json:"previousOrders"`
	PreviousRevenue decimal.Decimal `json:"previousRevenue"`
	OrdersPct       float64         `json:"ordersPct"`
	RevenuePct      float64         `json:"revenuePct"`
}

// Diagnostics reports what the query skipped or clipped without failing.
type Diagnostics struct {
	DroppedEvents int64    `json:"droppedEvents"`
	Truncated     bool     `json:"truncated"`
	Notes         []string `json:"notes,omitempty"`
}
