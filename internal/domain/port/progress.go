package port

// ProgressSink receives advisory completion percentages in [0,100] during a
// detection scan. Notifications are observational only and must not influence
// the scan outcome.
type ProgressSink interface {
	Progress(percent float64)
}

// ProgressFunc adapts a plain function to a ProgressSink.
type ProgressFunc func(percent float64)

func (f ProgressFunc) Progress(percent float64) { f(percent) }
