package acquire

import "nanosense-go/bus"

// Diagnostic topics published by the loop.
var (
	TopicState  = bus.T("sense", "state")  // retained types.LoopState
	TopicSample = bus.T("sense", "sample") // types.SampleReport
	TopicScan   = bus.T("sense", "scan")   // retained types.ScanReport
)

// TopicInit is where the init outcome of one component is retained.
func TopicInit(component string) bus.Topic { return bus.T("sense", "init", component) }
