package enums

import "fmt"

// SortField names a rankable field of a product summary.
type SortField string

const (
	SortFieldViews          SortField = "views"
	SortFieldAddToCarts     SortField = "add_to_carts"
	SortFieldSales          SortField = "sales"
	SortFieldConversionRate SortField = "conversion_rate"
	SortFieldRevenue        SortField = "revenue"
	SortFieldName           SortField = "name"
)

var validSortFields = []SortField{
	SortFieldViews,
	SortFieldAddToCarts,
	SortFieldSales,
	SortFieldConversionRate,
	SortFieldRevenue,
	SortFieldName,
}

// IsValid reports whether the value matches the canonical sort field enum.
func (s SortField) IsValid() bool {
	for _, candidate := range validSortFields {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortField converts the raw string to SortField.
func ParseSortField(value string) (SortField, error) {
	for _, candidate := range validSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

// SortDirection orders ranked output ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid reports whether the value matches the canonical sort direction enum.
func (s SortDirection) IsValid() bool {
	return s == SortAsc || s == SortDesc
}

// ParseSortDirection converts the raw string to SortDirection.
func ParseSortDirection(value string) (SortDirection, error) {
	switch SortDirection(value) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", value)
}
