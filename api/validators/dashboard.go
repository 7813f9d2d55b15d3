package validators

import (
	"time"

	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

// DashboardQueryRequest is the JSON body accepted by the dashboard query
// endpoint. Range is a keyword; custom ranges also require from/to.
type DashboardQueryRequest struct {
	Range           string            `json:"range" validate:"required"`
	From            *time.Time        `json:"from,omitempty"`
	To              *time.Time        `json:"to,omitempty"`
	Timezone        string            `json:"timezone,omitempty"`
	SortField       string            `json:"sortField,omitempty"`
	SortDirection   string            `json:"sortDirection,omitempty"`
	AlertThresholds map[string]int64  `json:"alertThresholds,omitempty"`
	AlertRatios     *AlertRatiosInput `json:"alertRatios,omitempty"`
	ComparePrevious bool              `json:"comparePrevious,omitempty"`
}

// AlertRatiosInput overrides the default severity boundaries for one query.
type AlertRatiosInput struct {
	Critical float64 `json:"critical" validate:"gt=0"`
	Warning  float64 `json:"warning" validate:"gt=0"`
}

// ToQuery translates the request into the engine query, rejecting unknown
// keywords and malformed custom windows before any event is scanned.
func (req DashboardQueryRequest) ToQuery() (types.Query, error) {
	var q types.Query

	keyword, err := enums.ParseRangeKeyword(req.Range)
	if err != nil {
		return q, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid range keyword")
	}
	q.Range = keyword

	if keyword == enums.RangeCustom {
		if req.From == nil || req.To == nil {
			return q, pkgerrors.New(pkgerrors.CodeInvalidRange, "custom range requires from and to")
		}
		q.From = *req.From
		q.To = *req.To
	} else if req.From != nil || req.To != nil {
		return q, pkgerrors.New(pkgerrors.CodeValidation, "from and to are only valid with a custom range")
	}

	q.Timezone = req.Timezone

	if req.SortField != "" {
		field, err := enums.ParseSortField(req.SortField)
		if err != nil {
			return q, pkgerrors.Wrap(pkgerrors.CodeUnknownSortField, err, "unknown sort field")
		}
		q.SortField = field
	}
	if req.SortDirection != "" {
		direction, err := enums.ParseSortDirection(req.SortDirection)
		if err != nil {
			return q, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort direction")
		}
		q.SortDirection = direction
	}

	for productID, threshold := range req.AlertThresholds {
		if productID == "" {
			return q, pkgerrors.New(pkgerrors.CodeValidation, "alert threshold product id must not be empty")
		}
		if threshold < 0 {
			return q, pkgerrors.New(pkgerrors.CodeValidation, "alert thresholds must not be negative")
		}
	}
	q.AlertThresholds = req.AlertThresholds

	if req.AlertRatios != nil {
		q.AlertRatios = &types.AlertRatios{
			Critical: req.AlertRatios.Critical,
			Warning:  req.AlertRatios.Warning,
		}
	}

	q.ComparePrevious = req.ComparePrevious
	return q, nil
}
