package types

import (
	"time"

	"github.com/brightmill/storefront-insights/pkg/enums"
)

// OrderEvent is a recorded order with the lifecycle status it carried at
// recording time. Amounts are cents on the wire.
type OrderEvent struct {
	ID          string
	ProductID   string
	CustomerID  string
	AmountCents int64
	Quantity    int64
	OccurredAt  time.Time
	Status      enums.OrderStatus
}

// ViewEvent is a single product page view.
type ViewEvent struct {
	ProductID  string
	OccurredAt time.Time
}

// CartEvent is a single add-to-cart action.
type CartEvent struct {
	ProductID  string
	OccurredAt time.Time
}

// StockEvent is a stock-level adjustment. ResultingStock is the absolute
// level after the adjustment was applied.
type StockEvent struct {
	ProductID      string
	DeltaQuantity  int64
	ResultingStock int64
	OccurredAt     time.Time
}

// Event is the union the event store delivers. Exactly one payload pointer
// matches Kind; a nil payload marks a malformed event the aggregator counts
// and drops.
type Event struct {
	Kind  enums.EventKind
	Order *OrderEvent
	View  *ViewEvent
	Cart  *CartEvent
	Stock *StockEvent
}

// OccurredAt returns the event timestamp, or the zero time when the payload
// is missing.
func (e Event) OccurredAt() time.Time {
	switch e.Kind {
	case enums.EventKindOrderRecorded:
		if e.Order != nil {
			return e.Order.OccurredAt
		}
	case enums.EventKindProductViewed:
		if e.View != nil {
			return e.View.OccurredAt
		}
	case enums.EventKindCartAdded:
		if e.Cart != nil {
			return e.Cart.OccurredAt
		}
	case enums.EventKindStockAdjusted:
		if e.Stock != nil {
			return e.Stock.OccurredAt
		}
	}
	return time.Time{}
}

// ProductID returns the product the event concerns, or "" when the payload
// is missing.
func (e Event) ProductID() string {
	switch e.Kind {
	case enums.EventKindOrderRecorded:
		if e.Order != nil {
			return e.Order.ProductID
		}
	case enums.EventKindProductViewed:
		if e.View != nil {
			return e.View.ProductID
		}
	case enums.EventKindCartAdded:
		if e.Cart != nil {
			return e.Cart.ProductID
		}
	case enums.EventKindStockAdjusted:
		if e.Stock != nil {
			return e.Stock.ProductID
		}
	}
	return ""
}
