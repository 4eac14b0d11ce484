// Package config loads request collection files for oneshot.
//
// A collection file is YAML (JSON is accepted too, since it is valid YAML)
// and defines:
//   - Environments: a base URL, default headers and variables per target
//   - Requests: named request templates with method, URL, headers, query
//     parameters, body, content type, timeout and response checks
//   - Schemas: named JSON schemas that requests can validate against
//
// Basic Usage:
//
//	cfg, err := config.LoadConfig("requests.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resolved, err := cfg.Resolve("staging", "getUser")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(resolved.Method, resolved.URL)
//
// Variable Substitution:
//
// Variables defined on the environment are substituted into request URLs,
// headers, query parameters and string bodies using the {{variableName}}
// syntax. Unknown variables are left as they are.
//
//	url := config.ProcessEnvironment(req.URL, env.Vars)
//
// Configuration Validation:
//
// ValidateConfig checks the whole file and returns every problem found,
// each tagged with a dotted path:
//
//	for _, err := range config.ValidateConfig(cfg) {
//	    log.Printf("Validation error: %s", err)
//	}
package config
