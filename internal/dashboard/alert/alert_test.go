package alert

import (
	"testing"

	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

func summary(id string, stock int64) types.ProductSummary {
	return types.ProductSummary{ProductID: id, CurrentStock: stock}
}

func TestCriticalAtQuarterOfThreshold(t *testing.T) {
	// 2/10 = 0.2 <= 0.25 -> critical
	alerts, err := Evaluate(
		[]types.ProductSummary{summary("p1", 2)},
		map[string]int64{"p1": 10},
		DefaultRatios,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Severity != enums.SeverityCritical {
		t.Fatalf("expected critical, got %s", alerts[0].Severity)
	}
	if alerts[0].MinStockThreshold != 10 || alerts[0].CurrentStock != 2 {
		t.Fatalf("alert must carry stock and threshold: %+v", alerts[0])
	}
}

func TestWarningBetweenCriticalAndThreshold(t *testing.T) {
	alerts, err := Evaluate(
		[]types.ProductSummary{summary("p1", 8)},
		map[string]int64{"p1": 10},
		DefaultRatios,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Severity != enums.SeverityWarning {
		t.Fatalf("expected one warning, got %+v", alerts)
	}
}

func TestNoAlertAboveThreshold(t *testing.T) {
	alerts, err := Evaluate(
		[]types.ProductSummary{summary("p1", 11)},
		map[string]int64{"p1": 10},
		DefaultRatios,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("stock above threshold must not alert, got %+v", alerts)
	}
}

func TestNoAlertWithoutThresholdEntry(t *testing.T) {
	alerts, err := Evaluate(
		[]types.ProductSummary{summary("p1", 0), summary("p2", 1)},
		map[string]int64{"p2": 10},
		DefaultRatios,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range alerts {
		if a.ProductID == "p1" {
			t.Fatalf("p1 has no threshold entry and must never alert")
		}
	}
	if len(alerts) != 1 {
		t.Fatalf("expected only p2 to alert, got %+v", alerts)
	}
}

func TestOrderingBySeverityThenRatio(t *testing.T) {
	alerts, err := Evaluate(
		[]types.ProductSummary{
			summary("warn-high", 9),
			summary("crit-low", 1),
			summary("warn-low", 5),
			summary("crit-high", 2),
		},
		map[string]int64{
			"warn-high": 10, // 0.9 warning
			"crit-low":  10, // 0.1 critical
			"warn-low":  10, // 0.5 warning
			"crit-high": 10, // 0.2 critical
		},
		DefaultRatios,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"crit-low", "crit-high", "warn-low", "warn-high"}
	if len(alerts) != len(want) {
		t.Fatalf("expected %d alerts, got %d", len(want), len(alerts))
	}
	for i, id := range want {
		if alerts[i].ProductID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, alerts[i].ProductID)
		}
	}
}

func TestBoundaryRatios(t *testing.T) {
	alerts, err := Evaluate(
		[]types.ProductSummary{
			summary("exactly-critical", 25), // 25/100 = 0.25
			summary("just-below", 99),       // 99/100 = 0.99
			summary("at-threshold", 100),    // 100/100 = 1.0
		},
		map[string]int64{"exactly-critical": 100, "just-below": 100, "at-threshold": 100},
		DefaultRatios,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %+v", alerts)
	}
	if alerts[0].ProductID != "exactly-critical" || alerts[0].Severity != enums.SeverityCritical {
		t.Fatalf("ratio equal to critical boundary must be critical: %+v", alerts[0])
	}
	if alerts[1].ProductID != "just-below" || alerts[1].Severity != enums.SeverityWarning {
		t.Fatalf("ratio just below the threshold must be warning: %+v", alerts[1])
	}
	for _, a := range alerts {
		if a.ProductID == "at-threshold" {
			t.Fatalf("stock exactly at the threshold must not alert: %+v", a)
		}
	}
}

func TestNoAlertAtExactThreshold(t *testing.T) {
	alerts, err := Evaluate(
		[]types.ProductSummary{summary("p1", 10)},
		map[string]int64{"p1": 10},
		DefaultRatios,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("stock equal to threshold must not alert, got %+v", alerts)
	}
}

func TestCustomRatios(t *testing.T) {
	alerts, err := Evaluate(
		[]types.ProductSummary{summary("p1", 4)},
		map[string]int64{"p1": 10},
		Ratios{Critical: 0.5, Warning: 1.0},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Severity != enums.SeverityCritical {
		t.Fatalf("expected critical under widened ratio, got %+v", alerts)
	}
}

func TestInvalidRatiosRejected(t *testing.T) {
	_, err := Evaluate(nil, nil, Ratios{Critical: 1.0, Warning: 0.25})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	_, err = Evaluate(nil, nil, Ratios{Critical: 0, Warning: 1})
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected error for non-positive ratio, got %v", err)
	}
}
