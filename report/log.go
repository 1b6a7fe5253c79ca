package report

import "go.uber.org/zap"

// LogSink writes diagnostics to a zap logger. Progress messages go to the
// debug level.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Error(d Diagnostic) {
	fields := []interface{}{"category", string(d.Category)}
	if d.Line > 0 {
		fields = append(fields, "line", d.Line)
	}
	if d.Column > 0 {
		fields = append(fields, "column", d.Column)
	}
	if d.Terminal {
		fields = append(fields, "terminal", true)
	}
	s.log.Errorw(d.Message, fields...)
}

func (s *LogSink) Info(msg string) {
	s.log.Debug(msg)
}
