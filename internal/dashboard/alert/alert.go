package alert

import (
	"sort"

	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

// Ratios are the stock/threshold boundaries for each severity tier.
type Ratios struct {
	Critical float64
	Warning  float64
}

// DefaultRatios places critical at a quarter of the threshold and warning
// below the threshold itself. The critical boundary is inclusive, warning is
// exclusive: stock exactly at the threshold is healthy.
var DefaultRatios = Ratios{Critical: 0.25, Warning: 1.0}

func (r Ratios) validate() error {
	if r.Critical <= 0 || r.Warning <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert ratios must be positive")
	}
	if r.Critical > r.Warning {
		return pkgerrors.New(pkgerrors.CodeValidation, "critical ratio must not exceed warning ratio")
	}
	return nil
}

// Evaluate emits low-stock alerts for products that have a threshold entry.
// Products absent from thresholds are never alerted on. Output is ordered by
// severity (critical first), then ascending stock/threshold ratio, then
// productId.
func Evaluate(summaries []types.ProductSummary, thresholds map[string]int64, ratios Ratios) ([]types.Alert, error) {
	if err := ratios.validate(); err != nil {
		return nil, err
	}

	type scored struct {
		alert types.Alert
		ratio float64
	}
	var out []scored

	for _, summary := range summaries {
		threshold, ok := thresholds[summary.ProductID]
		if !ok || threshold <= 0 {
			continue
		}
		ratio := float64(summary.CurrentStock) / float64(threshold)

		// critical includes its boundary; warning is strict, so stock
		// exactly at the threshold stays quiet
		var severity enums.AlertSeverity
		switch {
		case ratio <= ratios.Critical:
			severity = enums.SeverityCritical
		case ratio < ratios.Warning:
			severity = enums.SeverityWarning
		default:
			continue
		}

		out = append(out, scored{
			alert: types.Alert{
				ProductID:         summary.ProductID,
				CurrentStock:      summary.CurrentStock,
				MinStockThreshold: threshold,
				Severity:          severity,
			},
			ratio: ratio,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].alert.Severity != out[j].alert.Severity {
			return out[i].alert.Severity.Rank() < out[j].alert.Severity.Rank()
		}
		if out[i].ratio != out[j].ratio {
			return out[i].ratio < out[j].ratio
		}
		return out[i].alert.ProductID < out[j].alert.ProductID
	})

	alerts := make([]types.Alert, len(out))
	for i, s := range out {
		alerts[i] = s.alert
	}
	return alerts, nil
}
