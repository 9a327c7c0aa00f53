package logctx

import (
	"io"
	"sync"
	"time"
)

// Log Event Structure
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

// Logger Struct
type Logger struct {
	ID         string
	CreatedAt  time.Time
	queue      []Event    // event buffer
	mutex      sync.Mutex // protects buffer
	cond       *sync.Cond // condition to signal new events
	Done       <-chan struct{}
	PrintLevel int             // Level at which the message should be recorded
	wg         *sync.WaitGroup // Holds main execution threads until log watchers are done handling events

	outMutex   sync.RWMutex         // protects outputs, held for reading during writes
	outputs    map[uint64]io.Writer // destinations owned by this logger
	nextOutput uint64
}

// Registration handle for a single logger output
type Output struct {
	logger *Logger
	id     uint64
	once   sync.Once
}
