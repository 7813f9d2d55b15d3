package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brightmill/storefront-insights/pkg/enums"
)

// AlertRatios are the severity boundaries applied to stock/threshold ratios.
type AlertRatios struct {
	Critical float64 `json:"critical"`
	Warning  float64 `json:"warning"`
}

// Query describes one dashboard computation. Range selects a keyword window
// relative to Reference; custom ranges use From/To verbatim. SortField empty
// means the product summaries keep their default productId order. Alerts are
// evaluated only for products present in AlertThresholds.
type Query struct {
	Range           enums.RangeKeyword
	From            time.Time
	To              time.Time
	Timezone        string
	Reference       time.Time
	SortField       enums.SortField
	SortDirection   enums.SortDirection
	AlertThresholds map[string]int64
	AlertRatios     *AlertRatios
	ComparePrevious bool
}

// Result is the full dashboard payload for one query.
type Result struct {
	Start             time.Time         `json:"start"`
	End               time.Time         `json:"end"`
	Granularity       enums.Granularity `json:"granularity"`
	Buckets           []BucketSummary   `json:"buckets"`
	ProductSummaries  []ProductSummary  `json:"productSummaries"`
	CategorySummaries []CategorySummary `json:"categorySummaries"`
	Customers         []CustomerSummary `json:"customers"`
	Segments          []SegmentSummary  `json:"segments"`
	Alerts            []Alert           `json:"alerts"`
	TotalOrders       int64             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal   `json:"totalRevenue"`
	Growth            *Growth           `json:"growth,omitempty"`
	Diagnostics       Diagnostics       `json:"diagnostics"`
}
