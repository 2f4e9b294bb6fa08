package validation

import (
	"fmt"
	"github.com/kglearn/frontgate/internal/api/schema"
	"net/http"
	"strings"
)

var (
	errQueryParameterMissing = func(name string) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.missing",
			Message: fmt.Sprintf("The query parameter '%s' is required but was not present in the request.", name),
			Details: map[string]interface{}{
				"parameter": name,
			},
		}
	}
	errQueryParameterNotAPath = func(name, value string) *schema.Error {
		return &schema.Error{
			Type:    "validation.query.parameter.notAPath",
			Message: fmt.Sprintf("The query parameter '%s' ('%s') is not an absolute path within the application.", name, value),
			Details: map[string]interface{}{
				"parameter": name,
				"value":     value,
			},
		}
	}
)

// QueryString extracts a string value out of the query parameters of the given request
func QueryString(request *http.Request, key string, required bool, def string) (string, *schema.Error) {
	value := request.URL.Query().Get(key)
	if value == "" {
		if required {
			return "", errQueryParameterMissing(key)
		}
		return def, nil
	}
	return value, nil
}

// QueryPath extracts a value out of the query parameters of the given request and makes sure it is an absolute path
// (optionally carrying a query and fragment) that does not point to another host
func QueryPath(request *http.Request, key string, required bool, def string) (string, *schema.Error) {
	value, validationErr := QueryString(request, key, required, def)
	if validationErr != nil {
		return "", validationErr
	}
	if !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") || strings.HasPrefix(value, "/\\") {
		return "", errQueryParameterNotAPath(key, value)
	}
	return value, nil
}
