package enums

import "fmt"

// RangeKeyword names the dashboard time ranges a query may request.
type RangeKeyword string

const (
	RangeToday  RangeKeyword = "today"
	RangeWeek   RangeKeyword = "week"
	RangeMonth  RangeKeyword = "month"
	RangeYear   RangeKeyword = "year"
	RangeCustom RangeKeyword = "custom"
)

var validRangeKeywords = []RangeKeyword{
	RangeToday,
	RangeWeek,
	RangeMonth,
	RangeYear,
	RangeCustom,
}

// IsValid reports whether the value matches the canonical range keyword enum.
func (r RangeKeyword) IsValid() bool {
	for _, candidate := range validRangeKeywords {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRangeKeyword converts the raw string to RangeKeyword.
func ParseRangeKeyword(value string) (RangeKeyword, error) {
	for _, candidate := range validRangeKeywords {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid range keyword %q", value)
}
