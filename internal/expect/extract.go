// Package expect checks response bodies: it extracts values with JSONPath
// style expressions and validates bodies against JSON schemas.
package expect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyBody is returned when there is no JSON to extract from.
	ErrEmptyBody = errors.New("expect: empty body")
	// ErrNotJSON is returned when the body is not valid JSON.
	ErrNotJSON = errors.New("expect: body is not valid JSON")
)

// Extraction is the outcome of one named expression.
type Extraction struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Err   error  `json:"-" yaml:"-"`
}

// Extract returns the value at path in body. path may be JSONPath style
// ($.users[0].name) or a plain gjson path (users.0.name). Strings come back
// unquoted, JSON null as "null" and objects and arrays as raw JSON.
func Extract(body []byte, path string) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	if path == "" {
		return "", fmt.Errorf("expect: empty path")
	}
	if !gjson.ValidBytes(body) {
		return "", ErrNotJSON
	}

	result := gjson.GetBytes(body, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("expect: path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll evaluates every named expression against body. Results are
// ordered by name; failed ones carry Err. The returned error joins every
// failure, or is nil if all succeeded.
func ExtractAll(body []byte, paths map[string]string) ([]Extraction, error) {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Extraction, 0, len(names))
	var errs []error
	for _, name := range names {
		value, err := Extract(body, paths[name])
		results = append(results, Extraction{Name: name, Path: paths[name], Value: value, Err: err})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return results, errors.Join(errs...)
}

// toGjsonPath converts a JSONPath expression to gjson syntax.
//
//	$               -> @this
//	$.users[0].name -> users.0.name
//	$['key']        -> key
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	path = strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "").Replace(path)
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	return strings.TrimPrefix(path, ".")
}
