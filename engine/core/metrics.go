package core

// FrameMetrics accumulates per-frame renderer counters. Reset at the start of
// every frame on the execution context; no locking because there is only one
// mutator.
type FrameMetrics struct {
	DrawCalls        uint32
	UniformUploads   uint32
	UniformSkips     uint32
	TextureBinds     uint32
	TextureBindSkips uint32
	BuffersCreated   uint32
	BuffersDeleted   uint32
	DeferredResolved uint32
	ProgramsCompiled uint32
}

var metrics FrameMetrics

// Metrics returns the live counters for the current frame.
func Metrics() *FrameMetrics {
	return &metrics
}

// ResetMetrics zeroes all counters. Call at frame start.
func ResetMetrics() {
	metrics = FrameMetrics{}
}
