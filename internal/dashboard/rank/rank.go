package rank

import (
	"sort"
	"strings"

	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/enums"
	pkgerrors "github.com/brightmill/storefront-insights/pkg/errors"
)

// Sort orders product summaries in place by the requested field. Ties always
// fall back to productId ascending, regardless of direction, so repeated
// calls over identical input produce identical output.
func Sort(summaries []types.ProductSummary, field enums.SortField, direction enums.SortDirection) error {
	cmp, err := comparator(field)
	if err != nil {
		return err
	}
	if direction == "" {
		direction = enums.SortDesc
	}
	if !direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown sort direction").
			WithDetails(map[string]string{"direction": string(direction)})
	}

	desc := direction == enums.SortDesc
	sort.SliceStable(summaries, func(i, j int) bool {
		c := cmp(summaries[i], summaries[j])
		if c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return summaries[i].ProductID < summaries[j].ProductID
	})
	return nil
}

// comparator returns a three-way compare for the field, or UNKNOWN_SORT_FIELD.
func comparator(field enums.SortField) (func(a, b types.ProductSummary) int, error) {
	switch field {
	case enums.SortFieldViews:
		return func(a, b types.ProductSummary) int { return compareInt64(a.Views, b.Views) }, nil
	case enums.SortFieldAddToCarts:
		return func(a, b types.ProductSummary) int { return compareInt64(a.AddToCarts, b.AddToCarts) }, nil
	case enums.SortFieldSales:
		return func(a, b types.ProductSummary) int { return compareInt64(a.Sales, b.Sales) }, nil
	case enums.SortFieldConversionRate:
		return func(a, b types.ProductSummary) int { return compareFloat64(a.ConversionRate, b.ConversionRate) }, nil
	case enums.SortFieldRevenue:
		return func(a, b types.ProductSummary) int { return a.Revenue.Cmp(b.Revenue) }, nil
	case enums.SortFieldName:
		return func(a, b types.ProductSummary) int { return strings.Compare(a.Name, b.Name) }, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeUnknownSortField, "unknown sort field").
			WithDetails(map[string]string{"field": string(field)})
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
