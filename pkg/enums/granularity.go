package enums

// Granularity is the bucket width used when folding events into a time series.
type Granularity string

const (
	GranularityHourly  Granularity = "hourly"
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
	GranularityWindow  Granularity = "window"
)

// IsValid reports whether the value matches the canonical granularity enum.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityHourly, GranularityDaily, GranularityWeekly, GranularityMonthly, GranularityWindow:
		return true
	}
	return false
}
