package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogLayoutHooks writes layout and render events to a logger at debug
// level, and failures at error level.
type LogLayoutHooks struct{ Logger *log.Logger }

func (h LogLayoutHooks) OnLayoutStart(_ context.Context, engine string, nodeCount int) {
	h.Logger.Debug("layout start", "engine", engine, "nodes", nodeCount)
}

func (h LogLayoutHooks) OnLayoutComplete(_ context.Context, engine string, s LayoutStats, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("layout failed", "engine", engine, "err", err)
		return
	}
	h.Logger.Debug("layout done", "engine", engine, "people", s.People, "unions", s.Unions,
		"edges", s.Edges, "dropped", s.Dropped, "took", d.Round(time.Microsecond))
}

func (h LogLayoutHooks) OnRenderStart(_ context.Context, format string) {
	h.Logger.Debug("render start", "format", format)
}

func (h LogLayoutHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("render failed", "format", format, "err", err)
		return
	}
	h.Logger.Debug("render done", "format", format, "bytes", size, "took", d.Round(time.Microsecond))
}

// LogStoreHooks writes store events to a logger.
type LogStoreHooks struct{ Logger *log.Logger }

func (h LogStoreHooks) OnLoad(_ context.Context, backend string, people, rels int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("store load failed", "backend", backend, "err", err)
		return
	}
	h.Logger.Debug("store load", "backend", backend, "people", people, "relationships", rels, "took", d.Round(time.Microsecond))
}

func (h LogStoreHooks) OnMutation(_ context.Context, backend, op, id string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("store mutation failed", "backend", backend, "op", op, "id", id, "err", err)
		return
	}
	h.Logger.Info("store mutation", "backend", backend, "op", op, "id", id, "took", d.Round(time.Microsecond))
}

// LogHTTPHooks writes one line per API response.
type LogHTTPHooks struct{ Logger *log.Logger }

func (h LogHTTPHooks) OnRequest(context.Context, string, string) {}

func (h LogHTTPHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Info("http", "method", method, "route", route, "status", status, "took", d.Round(time.Microsecond))
}
