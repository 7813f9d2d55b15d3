package validators

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"range":"week","bogus":true}`))

	var req DashboardQueryRequest
	err := DecodeJSONBody(r, &req)
	if err == nil {
		t.Fatalf("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDecodeJSONBodyRequiresRange(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))

	var req DashboardQueryRequest
	err := DecodeJSONBody(r, &req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["range"] != "is required" {
		t.Fatalf("expected field detail, got %+v", typed.Details())
	}
}

func TestToQueryKeywordRange(t *testing.T) {
	req := DashboardQueryRequest{Range: "week", Timezone: "America/New_York", SortField: "revenue", SortDirection: "desc"}

	q, err := req.ToQuery()
	if err != nil {
		t.Fatalf("to query: %v", err)
	}
	if q.Range != enums.RangeWeek || q.SortField != enums.SortFieldRevenue || q.SortDirection != enums.SortDesc {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.Timezone != "America/New_York" {
		t.Fatalf("unexpected timezone %q", q.Timezone)
	}
}

func TestToQueryCustomRequiresBounds(t *testing.T) {
	req := DashboardQueryRequest{Range: "custom"}
	_, err := req.ToQuery()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidRange {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToQueryRejectsBoundsOnKeywordRange(t *testing.T) {
	from := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	req := DashboardQueryRequest{Range: "week", From: &from}
	_, err := req.ToQuery()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToQueryUnknownSortField(t *testing.T) {
	req := DashboardQueryRequest{Range: "today", SortField: "popularity"}
	_, err := req.ToQuery()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnknownSortField {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToQueryRejectsNegativeThreshold(t *testing.T) {
	req := DashboardQueryRequest{Range: "today", AlertThresholds: map[string]int64{"p1": -1}}
	_, err := req.ToQuery()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}
