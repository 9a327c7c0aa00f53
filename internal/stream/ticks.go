package stream

import "time"

type systemTicker struct {
	ticker *time.Ticker
}

func (source *systemTicker) C() <-chan time.Time {
	return source.ticker.C
}

func (source *systemTicker) Stop() {
	source.ticker.Stop()
}

// Tick sources backed by time.Ticker at the given interval
func SystemTicks(interval time.Duration) (builder TickBuilder) {
	builder = func() TickSource {
		return &systemTicker{ticker: time.NewTicker(interval)}
	}
	return
}
