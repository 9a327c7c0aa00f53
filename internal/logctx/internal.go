package logctx

import (
	"perfoverlay/internal/global"
	"time"
)

// Logs event
func (logger *Logger) log(eventLevel int, eventSeverity string, tags []string, fullMessage string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if eventLevel > logger.PrintLevel && eventSeverity != global.ErrorLog {
		return
	}

	logger.queue = append(logger.queue, Event{
		Timestamp: time.Now(),
		Tags:      tags,
		Severity:  eventSeverity,
		Message:   fullMessage,
	})
	logger.cond.Signal() // Notify watcher that new event is available
}

// Removes and returns all pending events
func (logger *Logger) drain() (events []Event) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()
	events = logger.queue
	logger.queue = make([]Event, 0)
	return
}
