package logctx

import (
	"fmt"
	"perfoverlay/internal/global"
	"strings"
	"time"
)

const (
	dedupWindow      = 5 * time.Second
	dedupMinRepeats  = 10
	suppressCooldown = 1 * time.Minute
)

type dedupState struct {
	lastMsg          string
	repeatCount      int
	lastSuppressTime time.Time
}

// Starts a go routine that reads events and writes formatted output to every registered output.
// Stops when logger.Done is closed, after writing whatever was still queued.
func StartWatcher(logger *Logger) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			logger.mutex.Lock()
			for len(logger.queue) == 0 {
				select {
				case <-logger.Done:
					logger.mutex.Unlock()
					return
				default:
					logger.cond.Wait()
				}
			}
			logger.mutex.Unlock()

			for _, event := range logger.drain() {
				dedup.emit(logger, event, time.Now())
			}
		}
	}()
}

// Writes event unless it is a highly repetitive duplicate
func (dedup *dedupState) emit(logger *Logger, event Event, now time.Time) {
	if event.Message != "" && event.Message == dedup.lastMsg && now.Sub(event.Timestamp) <= dedupWindow {
		dedup.repeatCount++
		if dedup.repeatCount >= dedupMinRepeats && now.Sub(dedup.lastSuppressTime) >= suppressCooldown {
			logger.write(fmt.Sprintf("[%s] [%s] [%s] Suppressed %d repeated messages: %s\n",
				padTimestamp(event.Timestamp),
				strings.Join(event.Tags, "/"),
				global.InfoLog,
				dedup.repeatCount,
				strings.TrimSuffix(dedup.lastMsg, "\n")))

			dedup.lastSuppressTime = now
			dedup.repeatCount = 0
		}
		return
	}

	dedup.lastMsg = event.Message
	dedup.repeatCount = 1
	logger.write(event.Format())
}
