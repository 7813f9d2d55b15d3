package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/brightmill/storefront-insights/internal/eventstore"
	"github.com/brightmill/storefront-insights/pkg/enums"
)

var validate = validator.New()

type orderPayload struct {
	OrderID     string `json:"orderId" validate:"required"`
	ProductID   string `json:"productId" validate:"required"`
	CustomerID  string `json:"customerId"`
	AmountCents int64  `json:"amountCents" validate:"gte=0"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
	Status      string `json:"status" validate:"required"`
}

type productPayload struct {
	ProductID string `json:"productId" validate:"required"`
}

type stockPayload struct {
	ProductID      string `json:"productId" validate:"required"`
	DeltaQuantity  int64  `json:"deltaQuantity"`
	ResultingStock *int64 `json:"resultingStock" validate:"required"`
}

// BuildRow validates the envelope payload and produces the wide event row
// appended to the event log.
func BuildRow(env Envelope) (*eventstore.EventRow, error) {
	row := &eventstore.EventRow{
		EventID:    env.EventID,
		EventKind:  string(env.Kind),
		OccurredAt: env.OccurredAt,
	}

	switch env.Kind {
	case enums.EventKindOrderRecorded:
		var payload orderPayload
		if err := decodePayload(env.Payload, &payload); err != nil {
			return nil, err
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			return nil, err
		}
		row.ProductID = eventstore.Ptr(payload.ProductID)
		row.OrderID = eventstore.Ptr(payload.OrderID)
		row.OrderStatus = eventstore.Ptr(string(status))
		row.AmountCents = eventstore.Ptr(payload.AmountCents)
		row.Quantity = eventstore.Ptr(payload.Quantity)
		if payload.CustomerID != "" {
			row.CustomerID = eventstore.Ptr(payload.CustomerID)
		}

	case enums.EventKindProductViewed, enums.EventKindCartAdded:
		var payload productPayload
		if err := decodePayload(env.Payload, &payload); err != nil {
			return nil, err
		}
		row.ProductID = eventstore.Ptr(payload.ProductID)

	case enums.EventKindStockAdjusted:
		var payload stockPayload
		if err := decodePayload(env.Payload, &payload); err != nil {
			return nil, err
		}
		row.ProductID = eventstore.Ptr(payload.ProductID)
		row.DeltaQuantity = eventstore.Ptr(payload.DeltaQuantity)
		row.ResultingStock = payload.ResultingStock

	default:
		return nil, fmt.Errorf("unsupported event kind %q", env.Kind)
	}

	return row, nil
}

func decodePayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return fmt.Errorf("payload missing")
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	return nil
}
