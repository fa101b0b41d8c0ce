package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements BuildHooks and CacheHooks by writing debug records.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnDocumentStart(_ context.Context, path string) {
	h.Logger.Debug("document started", "path", path)
}

func (h *LogHooks) OnDocumentComplete(_ context.Context, path string, diagrams int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("document failed", "path", path, "err", err)
		return
	}
	h.Logger.Debug("document rendered", "path", path, "diagrams", diagrams, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnDiagramStart(_ context.Context, sessionID string) {
	h.Logger.Debug("diagram generation started", "session", sessionID)
}

func (h *LogHooks) OnDiagramComplete(_ context.Context, sessionID string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("diagram generation failed", "session", sessionID, "err", err)
		return
	}
	h.Logger.Debug("diagram generated", "session", sessionID, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnImageRender(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("image render failed", "format", format, "err", err)
		return
	}
	h.Logger.Debug("image rendered", "format", format, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ BuildHooks = (*LogHooks)(nil)
	_ CacheHooks = (*LogHooks)(nil)
)
