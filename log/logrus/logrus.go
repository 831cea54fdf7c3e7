package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/bechflip"
)

var _ bechflip.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New wraps a logrus logger.
func New(l *logrus.Logger) LogrusLogger { return LogrusLogger{E: logrus.NewEntry(l)} }

func (l LogrusLogger) Debug(msg string, f bechflip.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f bechflip.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f bechflip.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f bechflip.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f bechflip.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
