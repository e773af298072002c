package core

import "github.com/hupe1980/notomate/logging"

// logHelper gives run and tool contexts leveled logging without nil checks.
type logHelper struct {
	logger logging.Logger
}

func newLogHelper(l logging.Logger) *logHelper {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &logHelper{logger: l}
}

// Logger returns the wrapped logger.
func (h *logHelper) Logger() logging.Logger { return h.logger }

func (h *logHelper) LogDebug(msg string, kv ...any) { h.logger.Debug(msg, kv...) }

func (h *logHelper) LogInfo(msg string, kv ...any) { h.logger.Info(msg, kv...) }

func (h *logHelper) LogWarn(msg string, kv ...any) { h.logger.Warn(msg, kv...) }

func (h *logHelper) LogError(msg string, kv ...any) { h.logger.Error(msg, kv...) }
