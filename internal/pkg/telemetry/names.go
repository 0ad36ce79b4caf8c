package telemetry

// Instrumentation names shared by spans.
const (
	TracerName = "github.com/samirrijal/dronepath"

	// Span attributes
	AttrSessionID  = "dronepath.session_id"
	AttrPathID     = "dronepath.path_id"
	AttrPointCount = "dronepath.point_count"
	AttrFormat     = "dronepath.upload_format"
	AttrIndex      = "dronepath.index"
)
