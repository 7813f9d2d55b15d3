package enums

// CustomerSegment buckets customers by purchase behavior inside a query window.
type CustomerSegment string

const (
	SegmentOneTime CustomerSegment = "one_time"
	SegmentRepeat  CustomerSegment = "repeat"
)
