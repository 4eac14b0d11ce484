package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	oshttp "github.com/wesleyorama2/oneshot/http"
	"github.com/wesleyorama2/oneshot/internal/expect"
	"github.com/wesleyorama2/oneshot/internal/stats"
)

// Formatter is responsible for formatting exchanges in text format
type Formatter struct {
	Verbose bool
	NoColor bool

	scheme *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  schemeFor(noColor),
	}
}

// FormatRequest formats the request side of an exchange
func (f *Formatter) FormatRequest(call *oshttp.Call) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.scheme.Method.Sprint(call.Method()),
		f.scheme.URL.Sprint(call.URI())))

	headers := call.HeaderParams()
	if f.Verbose || headers.Len() > 0 {
		buf.WriteString("  Headers:\n")
		headers.Each(func(key, value string) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n",
				f.scheme.HeaderKey.Sprint(key),
				f.scheme.HeaderValue.Sprint(value)))
		})
	}

	if body := call.Body(); len(body) > 0 {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(string(body)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *oshttp.Response) string {
	var buf strings.Builder

	statusColor := f.scheme.StatusError
	if resp.IsSuccess() {
		statusColor = f.scheme.StatusOK
	} else if resp.IsRedirect() {
		statusColor = f.scheme.StatusWarn
	}

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms, %s)\n",
		statusColor.Sprint(statusText(resp)),
		resp.Elapsed.Milliseconds(),
		humanize.Bytes(uint64(len(resp.Body)))))

	if f.Verbose {
		buf.WriteString("  Headers:\n")
		resp.Headers.Each(func(key, value string) {
			if value == oshttp.HeaderPresent {
				return
			}
			buf.WriteString(fmt.Sprintf("    %s: %s\n",
				f.scheme.HeaderKey.Sprint(key),
				f.scheme.HeaderValue.Sprint(value)))
		})
	}

	if len(resp.Body) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(resp.BodyString()))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatExtractions lists extracted values, marking failures.
func (f *Formatter) FormatExtractions(results []expect.Extraction) string {
	if len(results) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("  Extracted:\n")
	for _, r := range results {
		if r.Err != nil {
			buf.WriteString(fmt.Sprintf("    %s %s: %v\n", ErrorIcon(f.NoColor), r.Name, r.Err))
			continue
		}
		buf.WriteString(fmt.Sprintf("    %s %s = %s\n", SuccessIcon(f.NoColor), f.scheme.Highlight.Sprint(r.Name), r.Value))
	}
	return buf.String()
}

// FormatSchemaResult reports the outcome of a schema check.
func (f *Formatter) FormatSchemaResult(err error) string {
	if err == nil {
		return fmt.Sprintf("  %s Schema: valid\n", SuccessIcon(f.NoColor))
	}
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("  %s Schema: invalid\n", ErrorIcon(f.NoColor)))
	if verrs, ok := err.(expect.ValidationErrors); ok {
		for _, e := range verrs {
			buf.WriteString(fmt.Sprintf("    - %v\n", e))
		}
	} else {
		buf.WriteString(fmt.Sprintf("    - %v\n", err))
	}
	return buf.String()
}

// FormatSummary formats the summary of a repeated run.
func (f *Formatter) FormatSummary(s stats.Summary) string {
	var buf strings.Builder
	buf.WriteString(f.scheme.Highlight.Sprint("◆ SUMMARY") + "\n")
	for _, line := range strings.Split(strings.TrimRight(s.String(), "\n"), "\n") {
		buf.WriteString("  " + line + "\n")
	}
	return buf.String()
}

// statusText prefers the received status line without its protocol.
func statusText(resp *oshttp.Response) string {
	if line := resp.StatusLine(); line != "" {
		if _, rest, ok := strings.Cut(line, " "); ok {
			return rest
		}
		return line
	}
	return fmt.Sprintf("%d", resp.StatusCode)
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
