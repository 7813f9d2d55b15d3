package enums

import "fmt"

// EventKind is the canonical event_kind discriminator for business events.
type EventKind string

const (
	EventKindOrderRecorded EventKind = "order_recorded"
	EventKindProductViewed EventKind = "product_viewed"
	EventKindCartAdded     EventKind = "cart_added"
	EventKindStockAdjusted EventKind = "stock_adjusted"
)

var validEventKinds = []EventKind{
	EventKindOrderRecorded,
	EventKindProductViewed,
	EventKindCartAdded,
	EventKindStockAdjusted,
}

// IsValid reports whether the value matches the canonical event kind enum.
func (e EventKind) IsValid() bool {
	for _, candidate := range validEventKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventKind converts the raw string to EventKind.
func ParseEventKind(value string) (EventKind, error) {
	for _, candidate := range validEventKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event kind %q", value)
}
