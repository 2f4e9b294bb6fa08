package frontend

import (
	"github.com/kglearn/frontgate/internal/api/schema"
	"github.com/kglearn/frontgate/internal/api/validation"
	"github.com/kglearn/frontgate/internal/router"
	"github.com/kglearn/frontgate/internal/user"
	"net/http"
)

const (
	decisionProceed  = "proceed"
	decisionRedirect = "redirect"
)

type resolveResponse struct {
	Decision string           `json:"decision"`
	Rule     string           `json:"rule,omitempty"`
	To       *router.Location `json:"to"`
	Redirect *router.Target   `json:"redirect,omitempty"`
	Location string           `json:"location"`
}

// EndpointResolve handles the 'GET /_router/resolve?to={path}&from={path?:/}' endpoint
func (service *Service) EndpointResolve(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	rawTo, validationErr := validation.QueryPath(request, "to", true, "")
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	rawFrom, validationErr := validation.QueryPath(request, "from", false, "/")
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	to, err := service.Table.Resolve(rawTo)
	if err != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errInvalidLocation("to", rawTo))
		return
	}
	from, err := service.Table.Resolve(rawFrom)
	if err != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errInvalidLocation("from", rawFrom))
		return
	}

	decision := service.Guard.Evaluate(request.Context(), service.checker(request), to, from)
	response := &resolveResponse{
		Decision: decisionProceed,
		To:       to,
		Location: to.FullPath,
	}
	if !decision.Proceed() {
		href, err := service.Table.Href(decision.Redirect)
		if err != nil {
			service.writer.WriteInternalError(writer, err)
			return
		}
		response.Decision = decisionRedirect
		response.Rule = decision.Rule
		response.Redirect = decision.Redirect
		response.Location = href
	}

	writer.Header().Set("Cache-Control", "no-store")
	service.writer.WriteJSON(writer, response)
}

type sessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	Admin         bool        `json:"admin"`
	User          user.Record `json:"user,omitempty"`
}

// EndpointGetSession handles the 'GET /_session' endpoint
func (service *Service) EndpointGetSession(writer http.ResponseWriter, request *http.Request) {
	checker := service.checker(request)

	response := &sessionResponse{
		Authenticated: checker.IsAuthenticated(request.Context()),
		Admin:         checker.IsAdmin(request.Context()),
	}
	if response.Authenticated {
		if record, ok := checker.User(request.Context()); ok {
			response.User = record
		}
	}

	writer.Header().Set("Cache-Control", "no-store")
	service.writer.WriteJSON(writer, response)
}

// EndpointLogout handles the 'POST /_session/logout' endpoint
func (service *Service) EndpointLogout(writer http.ResponseWriter, request *http.Request) {
	service.checker(request).Clear(request.Context())
	writer.WriteHeader(http.StatusNoContent)
}

var errInvalidLocation = func(name, value string) *schema.Error {
	return &schema.Error{
		Type:    "validation.query.parameter.invalidLocation",
		Message: "The query parameter '" + name + "' could not be resolved to a location.",
		Details: map[string]interface{}{
			"parameter": name,
			"value":     value,
		},
	}
}
