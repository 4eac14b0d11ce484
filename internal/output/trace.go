package output

import (
	"io"
	"strings"
	"sync"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// TraceWriter is a trace sink that writes formatted wire traces to w,
// coloring each block's label by direction.
type TraceWriter struct {
	mu     sync.Mutex
	w      io.Writer
	scheme *ColorScheme
}

var _ oshttp.TraceSink = (*TraceWriter)(nil)

// NewTraceWriter returns a TraceWriter for w.
func NewTraceWriter(w io.Writer, noColor bool) *TraceWriter {
	return &TraceWriter{w: w, scheme: schemeFor(noColor)}
}

// Trace writes one formatted trace block.
func (t *TraceWriter) Trace(text string) {
	label, rest, _ := strings.Cut(text, "\n")

	var c = t.scheme.TraceInfo
	switch {
	case strings.HasPrefix(label, "=>"):
		c = t.scheme.TraceOut
	case strings.HasPrefix(label, "<="):
		c = t.scheme.TraceIn
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.w, c.Sprint(label))
	if strings.Contains(text, "\n") {
		io.WriteString(t.w, "\n"+rest)
	}
}
