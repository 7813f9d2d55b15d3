package eventstore

import (
	"time"

	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/enums"
)

// EventRow is the wide BigQuery row: one row per event, event_kind as the
// discriminator, per-kind columns nullable.
type EventRow struct {
	EventID        string    `bigquery:"event_id"`
	EventKind      string    `bigquery:"event_kind"`
	OccurredAt     time.Time `bigquery:"occurred_at"`
	ProductID      *string   `bigquery:"product_id"`
	CustomerID     *string   `bigquery:"customer_id"`
	OrderID        *string   `bigquery:"order_id"`
	OrderStatus    *string   `bigquery:"order_status"`
	AmountCents    *int64    `bigquery:"amount_cents"`
	Quantity       *int64    `bigquery:"quantity"`
	DeltaQuantity  *int64    `bigquery:"delta_quantity"`
	ResultingStock *int64    `bigquery:"resulting_stock"`
}

// ToEvent decodes the row into the domain event. Rows with missing or
// inconsistent columns come back with a nil payload so the aggregator counts
// the drop instead of the scan aborting.
func (r EventRow) ToEvent() types.Event {
	kind := enums.EventKind(r.EventKind)
	ev := types.Event{Kind: kind}

	productID := deref(r.ProductID)
	if productID == "" {
		return ev
	}

	switch kind {
	case enums.EventKindOrderRecorded:
		status := enums.OrderStatus(deref(r.OrderStatus))
		if !status.IsValid() {
			return ev
		}
		ev.Order = &types.OrderEvent{
			ID:          deref(r.OrderID),
			ProductID:   productID,
			CustomerID:  deref(r.CustomerID),
			AmountCents: derefInt(r.AmountCents),
			Quantity:    derefInt(r.Quantity),
			OccurredAt:  r.OccurredAt,
			Status:      status,
		}
	case enums.EventKindProductViewed:
		ev.View = &types.ViewEvent{ProductID: productID, OccurredAt: r.OccurredAt}
	case enums.EventKindCartAdded:
		ev.Cart = &types.CartEvent{ProductID: productID, OccurredAt: r.OccurredAt}
	case enums.EventKindStockAdjusted:
		if r.ResultingStock == nil {
			return ev
		}
		ev.Stock = &types.StockEvent{
			ProductID:      productID,
			DeltaQuantity:  derefInt(r.DeltaQuantity),
			ResultingStock: *r.ResultingStock,
			OccurredAt:     r.OccurredAt,
		}
	}
	return ev
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}

// Ptr returns a pointer to v, a small helper for building rows.
func Ptr[T any](v T) *T {
	return &v
}
