package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// Config represents the top-level configuration
type Config struct {
	Environments map[string]Environment `yaml:"environments" json:"environments"`
	Requests     map[string]Request     `yaml:"requests" json:"requests"`
	Schemas      map[string]interface{} `yaml:"schemas,omitempty" json:"schemas,omitempty"`
}

// Environment represents an environment configuration
type Environment struct {
	BaseURL string            `yaml:"baseUrl" json:"baseUrl"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Vars    map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// Request represents a request template
type Request struct {
	URL             string            `yaml:"url" json:"url"`
	Method          string            `yaml:"method" json:"method"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	QueryParams     map[string]string `yaml:"queryParams,omitempty" json:"queryParams,omitempty"`
	Body            interface{}       `yaml:"body,omitempty" json:"body,omitempty"`
	ContentType     string            `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	Timeout         string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	FollowRedirects *bool             `yaml:"followRedirects,omitempty" json:"followRedirects,omitempty"`
	Extract         map[string]string `yaml:"extract,omitempty" json:"extract,omitempty"`
	Schema          string            `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// Resolved is a request template bound to an environment, with every
// variable substituted and every field parsed.
type Resolved struct {
	Name            string
	Method          oshttp.Method
	URL             string
	Headers         map[string]string
	QueryParams     map[string]string
	Body            []byte
	ContentType     string
	Timeout         time.Duration
	FollowRedirects bool
	Extract         map[string]string
	Schema          []byte
}

// LoadConfig loads a collection file
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a collection from YAML or JSON.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return &config, nil
}

// Resolve binds the named request to the named environment.
func (c *Config) Resolve(envName, reqName string) (*Resolved, error) {
	if err := ValidateEnvironment(c, envName); err != nil {
		return nil, err
	}
	if err := ValidateRequest(c, reqName); err != nil {
		return nil, err
	}
	env := c.Environments[envName]
	req := c.Requests[reqName]

	method, err := oshttp.ParseMethod(req.Method)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", reqName, err)
	}

	r := &Resolved{
		Name:            reqName,
		Method:          method,
		URL:             joinURL(env.BaseURL, ProcessEnvironment(req.URL, env.Vars)),
		Headers:         MergeEnvironments(ProcessEnvironmentInMap(env.Headers, env.Vars), ProcessEnvironmentInMap(req.Headers, env.Vars)),
		QueryParams:     ProcessEnvironmentInMap(req.QueryParams, env.Vars),
		ContentType:     req.ContentType,
		FollowRedirects: req.FollowRedirects == nil || *req.FollowRedirects,
		Extract:         req.Extract,
	}

	if req.Timeout != "" {
		if r.Timeout, err = parseDurationString(req.Timeout); err != nil {
			return nil, fmt.Errorf("request %s: invalid timeout: %w", reqName, err)
		}
	}

	switch body := req.Body.(type) {
	case nil:
	case string:
		r.Body = []byte(ProcessEnvironment(body, env.Vars))
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("request %s: error encoding body: %w", reqName, err)
		}
		r.Body = []byte(ProcessEnvironment(string(encoded), env.Vars))
		if r.ContentType == "" {
			r.ContentType = "application/json"
		}
	}

	if req.Schema != "" {
		schema, ok := c.Schemas[req.Schema]
		if !ok {
			return nil, fmt.Errorf("request %s: schema not found: %s", reqName, req.Schema)
		}
		if r.Schema, err = json.Marshal(schema); err != nil {
			return nil, fmt.Errorf("request %s: error encoding schema: %w", reqName, err)
		}
	}

	return r, nil
}

// joinURL prefixes relative request URLs with the environment base URL.
func joinURL(baseURL, url string) string {
	if url == "" {
		return baseURL
	}
	if isAbsoluteURL(url) {
		return url
	}
	if strings.HasPrefix(url, "/") {
		return strings.TrimSuffix(baseURL, "/") + url
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + url
}

func isAbsoluteURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// parseDurationString accepts Go durations as well as "30 seconds" style text.
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// longest words first so "seconds" is not turned into "ss"
	replacer := strings.NewReplacer(
		"seconds", "s",
		"second", "s",
		"minutes", "m",
		"minute", "m",
		"hours", "h",
		"hour", "h",
	)
	return time.ParseDuration(replacer.Replace(duration))
}

// ProcessEnvironment substitutes {{name}} placeholders in input.
func ProcessEnvironment(input string, env map[string]string) string {
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessEnvironmentInMap substitutes placeholders in every value of input.
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}
	return result
}

// MergeEnvironments merges two maps, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}
