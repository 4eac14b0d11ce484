package http

import (
	"fmt"
	"strings"
)

// TraceKind classifies a trace event.
type TraceKind int

const (
	// TraceText is free-form informational text from the transport.
	TraceText TraceKind = iota
	TraceHeaderOut
	TraceDataOut
	TraceSSLDataOut
	TraceHeaderIn
	TraceDataIn
	TraceSSLDataIn
)

var traceLabels = map[TraceKind]string{
	TraceText:       "== Info",
	TraceHeaderOut:  "=> Send header",
	TraceDataOut:    "=> Send data",
	TraceSSLDataOut: "=> Send SSL data",
	TraceHeaderIn:   "<= Recv header",
	TraceDataIn:     "<= Recv data",
	TraceSSLDataIn:  "<= Recv SSL data",
}

func (k TraceKind) String() string {
	if label, ok := traceLabels[k]; ok {
		return label
	}
	return fmt.Sprintf("TraceKind(%d)", int(k))
}

// TraceSink receives formatted wire traces, one complete unit per call.
type TraceSink interface {
	Trace(text string)
}

// TraceSinkFunc adapts a function to TraceSink.
type TraceSinkFunc func(text string)

// Trace calls f(text).
func (f TraceSinkFunc) Trace(text string) { f(text) }

// FormatTrace renders one trace event as text: informational events get
// an "== Info: " prefix, data events are rendered with Dump. The second
// result is false for unknown kinds.
func FormatTrace(kind TraceKind, data []byte) (string, bool) {
	if kind == TraceText {
		return "== Info: " + string(data), true
	}
	label, ok := traceLabels[kind]
	if !ok {
		return "", false
	}
	return Dump(label, data), true
}

const dumpWidth = 0xFFF

// Dump renders data as a summary line followed by printable ASCII, with
// other bytes shown as '.'. Rows wrap at a fixed width and a CR LF pair
// ends the row without being rendered.
func Dump(label string, data []byte) string {
	var b strings.Builder
	size := len(data)

	fmt.Fprintf(&b, "%s, %10d bytes (0x%x)\n", label, size, size)

	for i := 0; i < size; i += dumpWidth {
		b.WriteString("   ")
		for c := 0; c < dumpWidth && i+c < size; c++ {
			if i+c+1 < size && data[i+c] == '\r' && data[i+c+1] == '\n' {
				i += c + 2 - dumpWidth
				break
			}
			ch := data[i+c]
			if ch < 0x20 || ch >= 0x80 {
				ch = '.'
			}
			b.WriteByte(ch)
			// avoid an empty row when the CR LF starts right after this byte
			if i+c+2 < size && data[i+c+1] == '\r' && data[i+c+2] == '\n' {
				i += c + 3 - dumpWidth
				break
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
