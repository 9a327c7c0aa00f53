package sink

import (
	"context"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/stream"
	"runtime/debug"
	"strconv"
	"sync"
	"time"
)

// Consumes batches with workers and sweeps expired history until ctx is cancelled
func (sink *Sink) Run(ctx context.Context, inbox Inbox, workers int, sweepInterval time.Duration) {
	if workers <= 0 {
		workers = global.DefaultSinkWorkers
	}
	if sweepInterval <= 0 {
		sweepInterval = global.DefaultSweepInterval
	}

	ctx = logctx.AppendCtxTag(ctx, global.NSSink)

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerCtx := logctx.AppendCtxTag(ctx, global.NSWorker, strconv.Itoa(id))
			sink.worker(workerCtx, inbox)
		}(id)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sink.sweeper(logctx.AppendCtxTag(ctx, global.NSSweeper), sweepInterval)
	}()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"started %d sink worker(s), sweeping every %s\n", workers, sweepInterval)

	wg.Wait()
}

func (sink *Sink) worker(ctx context.Context, inbox Inbox) {
	for {
		// Stop this worker when cancel requested
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			// Record panics and continue processing
			defer func() {
				if fatalError := recover(); fatalError != nil {
					stack := debug.Stack()
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"panic in sink worker thread: %v\n%s", fatalError, stack)
				}
			}()

			batch, received := inbox.Pop(ctx)
			if !received || batch == nil {
				return
			}
			sink.Apply(ctx, batch)
		}()
	}
}

// Applies one batch through its stream delivery gate
func (sink *Sink) Apply(ctx context.Context, batch *stream.Batch) (applied bool) {
	var err error
	applied = batch.Deliver(func() {
		err = sink.OnSamplesReceived(batch.Channel, batch.DeviceID, batch.PackageID, batch.Samples)
	})
	if !applied {
		sink.Metrics.Rejected.Add(1)
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"discarded batch from stopped stream %s\n", batch.StreamID)
		return
	}
	if err != nil {
		applied = false
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"failed to apply batch from stream %s: %v\n", batch.StreamID, err)
		return
	}
	sink.Metrics.Batches.Add(1)
	return
}

func (sink *Sink) sweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := sink.Evict(sink.now())
			if evicted > 0 {
				logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
					"evicted %d expired point(s)\n", evicted)
			}
		}
	}
}
