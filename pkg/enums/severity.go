package enums

// AlertSeverity is the urgency tier of a low-stock alert.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
)

// Rank orders severities for sorting, lower is more urgent.
func (a AlertSeverity) Rank() int {
	if a == SeverityCritical {
		return 0
	}
	return 1
}
