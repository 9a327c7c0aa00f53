package logctx

import (
	"io"
	"sort"
)

// Registers a writer to receive every formatted event.
// The writer stays registered until the returned handle is closed.
func (logger *Logger) AddOutput(writer io.Writer) (handle *Output) {
	logger.outMutex.Lock()
	defer logger.outMutex.Unlock()

	logger.nextOutput++
	logger.outputs[logger.nextOutput] = writer

	handle = &Output{
		logger: logger,
		id:     logger.nextOutput,
	}
	return
}

// Removes the output from its logger. Safe to call more than once.
// No write reaches the writer after Close returns.
func (handle *Output) Close() {
	if handle == nil {
		return
	}
	handle.once.Do(func() {
		handle.logger.outMutex.Lock()
		defer handle.logger.outMutex.Unlock()
		delete(handle.logger.outputs, handle.id)
	})
}

// Number of registered outputs
func (logger *Logger) OutputCount() (count int) {
	logger.outMutex.RLock()
	defer logger.outMutex.RUnlock()
	count = len(logger.outputs)
	return
}

// Writes text to all outputs in registration order
func (logger *Logger) write(text string) {
	logger.outMutex.RLock()
	defer logger.outMutex.RUnlock()

	ids := make([]uint64, 0, len(logger.outputs))
	for id := range logger.outputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		// Output errors cannot be logged anywhere useful
		_, _ = io.WriteString(logger.outputs[id], text)
	}
}
