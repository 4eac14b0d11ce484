package http

import "strings"

// HeaderPresent is the value recorded for received header lines that have
// no ':' separator, such as the status line.
const HeaderPresent = "present"

// bodyWriter appends every chunk to resp.Body.
func bodyWriter(resp *Response) WriteFunc {
	return func(p []byte) int {
		resp.Body = append(resp.Body, p...)
		return len(p)
	}
}

// headerParser records each received header line in resp.Headers.
func headerParser(resp *Response) WriteFunc {
	return func(p []byte) int {
		parseHeaderLine(resp.Headers, string(p))
		return len(p)
	}
}

// parseHeaderLine splits line at its first ':' and upserts the trimmed pair.
// Lines without a separator are stored under their own text; blank lines
// are ignored.
func parseHeaderLine(h *Params, line string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		h.Set(line, HeaderPresent)
		return
	}
	h.Set(strings.TrimSpace(key), strings.TrimSpace(value))
}

// uploadCursor feeds an outbound body to the transport. It is consumed
// monotonically and lives for a single exchange.
type uploadCursor struct {
	data []byte
}

func newUploadCursor(body []byte) *uploadCursor {
	return &uploadCursor{data: body}
}

// Remaining returns the number of bytes not yet handed out.
func (u *uploadCursor) Remaining() int {
	return len(u.data)
}

// Read copies min(Remaining, len(p)) bytes into p.
func (u *uploadCursor) Read(p []byte) int {
	n := copy(p, u.data)
	u.data = u.data[n:]
	return n
}
