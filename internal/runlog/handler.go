package runlog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// lineHandler is a slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<runID>\t<message>\t<key=value ...>
//
// Every record goes to w. Records at mirrorLevel or above are also
// written to mirror when it is set.
type lineHandler struct {
	mu          *sync.Mutex
	w           io.Writer
	mirror      io.Writer
	mirrorLevel slog.Level
	runID       string
	attrs       []slog.Attr
}

func newLineHandler(w, mirror io.Writer, runID string) *lineHandler {
	return &lineHandler{
		mu:          &sync.Mutex{},
		w:           w,
		mirror:      mirror,
		mirrorLevel: slog.LevelWarn,
		runID:       runID,
	}
}

func (h *lineHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(&buf, "%s\t%s\t%s\t%s", ts, r.Level.String(), h.runID, r.Message)

	// Write pre-set attrs.
	for _, a := range h.attrs {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
	}

	// Write per-record attrs.
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return err
	}
	if h.mirror != nil && r.Level >= h.mirrorLevel {
		_, err := h.mirror.Write(buf.Bytes())
		return err
	}
	return nil
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lineHandler{
		mu:          h.mu,
		w:           h.w,
		mirror:      h.mirror,
		mirrorLevel: h.mirrorLevel,
		runID:       h.runID,
		attrs:       append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *lineHandler) WithGroup(string) slog.Handler { return h }
