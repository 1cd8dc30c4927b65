package process

import (
	"bytes"
	"strings"

	"github.com/giantswarm/zksupervisor/internal/activity"
)

// lineWriter forwards each complete line written to it as one activity entry.
// exec copies each stream from a single goroutine, so no locking is needed.
type lineWriter struct {
	log    activity.Log
	sev    activity.Severity
	prefix string
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// flush emits a trailing line that had no newline.
func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	s := strings.TrimRight(string(line), "\r")
	if s == "" {
		return
	}
	w.log.Add(w.sev, w.prefix+": "+s)
}
