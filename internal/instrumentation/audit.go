package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/abdulehsan/Jarvis/internal/logging"
)

// ToolInvocation captures one tool call for the audit log line.
type ToolInvocation struct {
	Tool      string
	Alias     string
	Service   string
	Surface   string
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	TraceID   string
}

// NewToolInvocation starts a record for tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

// WithAlias sets the account alias the call targeted.
func (ti *ToolInvocation) WithAlias(alias string) *ToolInvocation {
	ti.Alias = alias
	return ti
}

// WithService sets the Google service behind the tool.
func (ti *ToolInvocation) WithService(service string) *ToolInvocation {
	ti.Service = service
	return ti
}

// WithSpanContext copies the trace id of the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	return ti
}

// Complete stamps the duration and outcome. errText is the text shown to
// the caller when the tool reported a failure.
func (ti *ToolInvocation) Complete(success bool, errText string) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	ti.Error = errText
	return ti
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the structured attributes of the invocation. Aliases are
// user chosen labels, not PII, so they are logged as is.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		logging.Tool(ti.Tool),
		logging.Status(ti.Status()),
		slog.Duration(logging.KeyDuration, ti.Duration),
	}
	if ti.Alias != "" {
		attrs = append(attrs, logging.Alias(ti.Alias))
	}
	if ti.Service != "" {
		attrs = append(attrs, logging.Service(ti.Service))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, logging.Truncate(ti.Error, 200)))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	return attrs
}

// AuditLogger writes one line per tool call.
type AuditLogger struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditLogger creates an enabled AuditLogger.
func NewAuditLogger(logger *slog.Logger, enabled bool) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger, enabled: enabled}
}

// LogToolInvocation logs ti at info on success and warn on failure.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}
	level := slog.LevelInfo
	msg := "tool_executed"
	if !ti.Success {
		level = slog.LevelWarn
		msg = "tool_failed"
	}
	al.logger.LogAttrs(ctx, level, msg, ti.LogAttrs()...)
}
