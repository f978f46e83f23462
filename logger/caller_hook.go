package logger

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Frames to skip before the walk starts: runtime.Callers, Fire, the logrus
// internals and our Entry wrappers.
const callerSkipFrames = 6

// callerHook repoints the caller reported by logrus at the first frame
// outside logrus and this package, so file:line refers to the reader, writer
// or pipeline call site rather than a wrapper method.
type callerHook struct{}

func (h *callerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *callerHook) Fire(entry *logrus.Entry) error {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(callerSkipFrames, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !more {
			break
		}
		if internalFrame(frame.Function) {
			continue
		}
		entry.Caller = &frame
		break
	}
	return nil
}

func internalFrame(fn string) bool {
	return strings.Contains(fn, "sirupsen/logrus") || strings.Contains(fn, "leaderflow/logger")
}
