package overview

import (
	"context"

	"go.uber.org/zap"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes telemetry events as debug log entries.
type LogTelemetry struct {
	Logger *zap.Logger
}

// Record implements Telemetry.
func (t LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t.Logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(payload)+1)
	fields = append(fields, zap.String("event", event))
	for key, value := range payload {
		fields = append(fields, zap.Any(key, value))
	}
	t.Logger.Debug("telemetry", fields...)
}
