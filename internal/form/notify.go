package form

import (
	"log/slog"
)

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Notifier shows messages to the user. A UI would render these as toasts.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		n.logger.Error(message)
	default:
		n.logger.Info(message, "level", string(level))
	}
}
