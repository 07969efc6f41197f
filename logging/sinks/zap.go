package sinks

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mechmania/server/logging"
)

// Zap forwards events to a zap logger as structured entries.
type Zap struct {
	logger *zap.Logger
}

// NewZap wraps logger. A nil logger builds zap's production configuration.
func NewZap(logger *zap.Logger) (*Zap, error) {
	if logger == nil {
		built, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		logger = built
	}
	return &Zap{logger: logger}, nil
}

func (s *Zap) Write(event logging.Event) error {
	fields := []zap.Field{
		zap.Uint64("tick", event.Tick),
		zap.String("category", event.Category),
		zap.String("actor", formatEntity(event.Actor)),
		zap.Time("eventTime", event.Time),
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, formatEntity(target))
		}
		fields = append(fields, zap.Strings("targets", targets))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	if len(event.Extra) > 0 {
		fields = append(fields, zap.Any("extra", event.Extra))
	}
	if ce := s.logger.Check(zapLevel(event.Severity), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

// Close flushes buffered entries.
func (s *Zap) Close(context.Context) error {
	_ = s.logger.Sync()
	return nil
}

func zapLevel(severity logging.Severity) zapcore.Level {
	switch severity {
	case logging.SeverityDebug:
		return zapcore.DebugLevel
	case logging.SeverityWarn:
		return zapcore.WarnLevel
	case logging.SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
