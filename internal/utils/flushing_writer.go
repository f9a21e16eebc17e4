package utils

import (
	"io"
	"sync"
)

// flushable is the optional interface buffered writers expose.
type flushable interface{ Flush() error }

// FlushingWriter pushes buffered output through after every write so command
// results appear immediately even when the destination buffers.
type FlushingWriter struct {
	mutex   sync.Mutex
	writer  io.Writer
	flusher flushable
}

// NewFlushingWriter wraps writer so each Write is followed by a Flush when
// the writer supports it. Wrapping an existing FlushingWriter returns it
// unchanged; a nil writer yields nil.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if existing, alreadyWrapping := writer.(*FlushingWriter); alreadyWrapping {
		return existing
	}

	wrapped := &FlushingWriter{writer: writer}
	wrapped.flusher, _ = writer.(flushable)
	return wrapped
}

// Write forwards data to the wrapped writer and flushes it on success.
func (flushing *FlushingWriter) Write(data []byte) (int, error) {
	if flushing == nil || flushing.writer == nil {
		return 0, nil
	}

	flushing.mutex.Lock()
	defer flushing.mutex.Unlock()

	writtenBytes, writeError := flushing.writer.Write(data)
	if writeError != nil {
		return writtenBytes, writeError
	}
	if flushing.flusher != nil {
		if flushError := flushing.flusher.Flush(); flushError != nil {
			return writtenBytes, flushError
		}
	}
	return writtenBytes, nil
}
