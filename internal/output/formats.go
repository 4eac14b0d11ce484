package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	oshttp "github.com/wesleyorama2/oneshot/http"
	"github.com/wesleyorama2/oneshot/internal/expect"
	"github.com/wesleyorama2/oneshot/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(call *oshttp.Call) string
	FormatResponse(resp *oshttp.Response) string
	FormatExtractions(results []expect.Extraction) string
	FormatSchemaResult(err error) string
	FormatSummary(s stats.Summary) string
}

// RequestData represents the structured data of a request
type RequestData struct {
	ID        string         `json:"id" yaml:"id"`
	Method    string         `json:"method" yaml:"method"`
	URL       string         `json:"url" yaml:"url"`
	Headers   *oshttp.Params `json:"headers,omitempty" yaml:"-"`
	Body      interface{}    `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string         `json:"timestamp" yaml:"timestamp"`
}

// ResponseData represents the structured data of a response
type ResponseData struct {
	StatusCode int            `json:"statusCode" yaml:"statusCode"`
	Status     string         `json:"status" yaml:"status"`
	Headers    *oshttp.Params `json:"headers,omitempty" yaml:"-"`
	Body       interface{}    `json:"body,omitempty" yaml:"body,omitempty"`
	ElapsedMs  int64          `json:"elapsedMs" yaml:"elapsedMs"`
	Size       int            `json:"size" yaml:"size"`
	Timestamp  string         `json:"timestamp" yaml:"timestamp"`
}

// ExtractionData is one extraction result
type ExtractionData struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SchemaData is the outcome of a schema check
type SchemaData struct {
	Valid  bool     `json:"valid" yaml:"valid"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newRequestData(call *oshttp.Call) RequestData {
	return RequestData{
		ID:        call.ID,
		Method:    call.Method().String(),
		URL:       call.URI(),
		Headers:   call.HeaderParams(),
		Body:      decodeBody(call.Body()),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func newResponseData(resp *oshttp.Response) ResponseData {
	headers := oshttp.NewParams()
	resp.Headers.Each(func(key, value string) {
		if value != oshttp.HeaderPresent {
			headers.Set(key, value)
		}
	})
	return ResponseData{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Headers:    headers,
		Body:       decodeBody(resp.Body),
		ElapsedMs:  resp.Elapsed.Milliseconds(),
		Size:       len(resp.Body),
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}

func newExtractionData(results []expect.Extraction) []ExtractionData {
	data := make([]ExtractionData, 0, len(results))
	for _, r := range results {
		d := ExtractionData{Name: r.Name, Path: r.Path, Value: r.Value}
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		data = append(data, d)
	}
	return data
}

func newSchemaData(err error) SchemaData {
	if err == nil {
		return SchemaData{Valid: true}
	}
	if verrs, ok := err.(expect.ValidationErrors); ok {
		data := SchemaData{}
		for _, e := range verrs {
			data.Errors = append(data.Errors, e.Error())
		}
		return data
	}
	return SchemaData{Errors: []string{err.Error()}}
}

// decodeBody returns parsed JSON when possible, otherwise the raw text.
func decodeBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}, what string) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, what, err) + "\n"
	}
	return string(output) + "\n"
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(call *oshttp.Call) string {
	return f.marshal(map[string]interface{}{"request": newRequestData(call)}, "request")
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *oshttp.Response) string {
	return f.marshal(map[string]interface{}{"response": newResponseData(resp)}, "response")
}

// FormatExtractions formats extraction results as JSON
func (f *JSONFormatter) FormatExtractions(results []expect.Extraction) string {
	if len(results) == 0 {
		return ""
	}
	return f.marshal(map[string]interface{}{"extracted": newExtractionData(results)}, "extractions")
}

// FormatSchemaResult formats a schema check as JSON
func (f *JSONFormatter) FormatSchemaResult(err error) string {
	return f.marshal(map[string]interface{}{"schema": newSchemaData(err)}, "schema result")
}

// FormatSummary formats a run summary as JSON
func (f *JSONFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal(map[string]interface{}{"summary": s}, "summary")
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(key string, v interface{}, headers *oshttp.Params) string {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return fmt.Sprintf("error: Failed to marshal %s: %s\n", key, err)
	}
	if headers != nil && headers.Len() > 0 {
		// yaml has no ordered map; build the node by hand to keep arrival order
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "headers"},
			paramsNode(headers))
	}
	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: key},
			&node,
		},
	}
	output, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal %s: %s\n", key, err)
	}
	return "---\n" + string(output)
}

func paramsNode(p *oshttp.Params) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	p.Each(func(key, value string) {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: yaml.DoubleQuotedStyle})
	})
	return n
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(call *oshttp.Call) string {
	data := newRequestData(call)
	return f.marshal("request", data, data.Headers)
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *oshttp.Response) string {
	data := newResponseData(resp)
	return f.marshal("response", data, data.Headers)
}

// FormatExtractions formats extraction results as YAML
func (f *YAMLFormatter) FormatExtractions(results []expect.Extraction) string {
	if len(results) == 0 {
		return ""
	}
	return f.marshal("extracted", newExtractionData(results), nil)
}

// FormatSchemaResult formats a schema check as YAML
func (f *YAMLFormatter) FormatSchemaResult(err error) string {
	return f.marshal("schema", newSchemaData(err), nil)
}

// FormatSummary formats a run summary as YAML
func (f *YAMLFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal("summary", s, nil)
}

// GetFormatter returns the FormatProvider for format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}
