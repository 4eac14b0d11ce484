package config

import (
	"fmt"
	"sort"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration. Errors are ordered by path.
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	if len(config.Environments) == 0 {
		errors = append(errors, ValidationError{
			Path:    "environments",
			Message: "at least one environment is required",
		})
	}

	for name, env := range config.Environments {
		if env.BaseURL == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("environments.%s.baseUrl", name),
				Message: "baseUrl is required",
			})
		}
	}

	if len(config.Requests) == 0 {
		errors = append(errors, ValidationError{
			Path:    "requests",
			Message: "at least one request is required",
		})
	}

	for name, req := range config.Requests {
		errors = append(errors, validateRequest(config, name, req)...)
	}

	sort.SliceStable(errors, func(i, j int) bool {
		return errors[i].Path < errors[j].Path
	})
	return errors
}

func validateRequest(config *Config, name string, req Request) []ValidationError {
	var errors []ValidationError
	path := func(field string) string {
		return fmt.Sprintf("requests.%s.%s", name, field)
	}

	if req.Method == "" {
		errors = append(errors, ValidationError{
			Path:    path("method"),
			Message: "method is required",
		})
	} else if method, err := oshttp.ParseMethod(req.Method); err != nil {
		errors = append(errors, ValidationError{
			Path:    path("method"),
			Message: fmt.Sprintf("invalid method: %s", req.Method),
		})
	} else if req.Body != nil && !method.CarriesBody() {
		errors = append(errors, ValidationError{
			Path:    path("body"),
			Message: fmt.Sprintf("%s requests cannot have a body", method),
		})
	}

	if req.Timeout != "" {
		if _, err := parseDurationString(req.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    path("timeout"),
				Message: fmt.Sprintf("invalid duration: %s", req.Timeout),
			})
		}
	}

	for varName, expr := range req.Extract {
		if expr == "" {
			errors = append(errors, ValidationError{
				Path:    path("extract." + varName),
				Message: "extract path cannot be empty",
			})
		}
	}

	if req.Schema != "" {
		if _, ok := config.Schemas[req.Schema]; !ok {
			errors = append(errors, ValidationError{
				Path:    path("schema"),
				Message: fmt.Sprintf("schema not found: %s", req.Schema),
			})
		}
	}

	return errors
}

// ValidateEnvironment validates that an environment exists
func ValidateEnvironment(config *Config, envName string) error {
	if _, ok := config.Environments[envName]; !ok {
		return fmt.Errorf("environment not found: %s", envName)
	}
	return nil
}

// ValidateRequest validates that a request exists
func ValidateRequest(config *Config, reqName string) error {
	if _, ok := config.Requests[reqName]; !ok {
		return fmt.Errorf("request not found: %s", reqName)
	}
	return nil
}
