package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/soup/pkg/observability"
)

// logHooks reports resolver, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

// installHooks registers logHooks for every hook kind.
func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetResolveHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnResolveStart(_ context.Context, rootPath string) {
	h.logger.Debug("resolve started", "root", rootPath)
}

func (h logHooks) OnLevel(_ context.Context, level, nodeCount int, d time.Duration) {
	h.logger.Debug("level resolved", "level", level, "nodes", nodeCount, "duration", d.Round(time.Microsecond))
}

func (h logHooks) OnManifestFailed(_ context.Context, path string, err error) {
	h.logger.Debug("manifest failed", "path", path, "err", err)
}

func (h logHooks) OnResolveComplete(_ context.Context, rootPath string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "root", rootPath, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("resolve complete", "root", rootPath, "nodes", nodeCount, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("http request", "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "path", path, "status", status, "duration", d)
}
