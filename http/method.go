package http

import (
	"fmt"
	"strings"
)

// Method is an HTTP verb a Request can be constructed with.
type Method int

// Supported methods. The zero value is not a valid Method.
const (
	MethodGet Method = iota + 1
	MethodPut
	MethodPost
	MethodDelete
	MethodHead
)

var methodNames = map[Method]string{
	MethodGet:    "GET",
	MethodPut:    "PUT",
	MethodPost:   "POST",
	MethodDelete: "DELETE",
	MethodHead:   "HEAD",
}

// String returns the verb as it appears on the wire.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// CarriesBody reports whether a typed call with this method may be given a body.
func (m Method) CarriesBody() bool {
	return m == MethodPut || m == MethodPost || m == MethodDelete
}

// ParseMethod converts a verb such as "get" or "DELETE" into a Method.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}
