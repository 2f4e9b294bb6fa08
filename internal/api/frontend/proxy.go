package frontend

import (
	"bytes"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/kglearn/frontgate/internal/api/schema"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/rs/zerolog/log"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"slices"
	"strings"
)

const (
	headerRequestID     = "X-Request-Id"
	headerAuthorization = "Authorization"

	maxCaptureBytes = 1 << 20
)

// capturedPayload is the envelope the backend's authentication endpoints answer with
type capturedPayload struct {
	Success bool            `json:"success"`
	Token   *string         `json:"token"`
	User    json.RawMessage `json:"user"`
}

func (service *Service) newAPIProxy() (*httputil.ReverseProxy, error) {
	target, err := service.Config.APITargetURL()
	if err != nil {
		return nil, err
	}

	return &httputil.ReverseProxy{
		Rewrite: func(proxyRequest *httputil.ProxyRequest) {
			service.rewriteAPIRequest(target, proxyRequest)
		},
		ModifyResponse: func(response *http.Response) error {
			service.captureAPIResponse(target, response)
			return nil
		},
		ErrorHandler: func(writer http.ResponseWriter, request *http.Request, err error) {
			log.Error().Err(err).Str("path", request.URL.Path).Str("target", target.String()).Msg("the backend API could not be reached")
			service.writer.WriteErrors(writer, http.StatusBadGateway, schema.ErrBadGateway)
		},
	}, nil
}

func (service *Service) rewriteAPIRequest(target *url.URL, proxyRequest *httputil.ProxyRequest) {
	// SetURL rewrites the Host header to the target's host
	proxyRequest.SetURL(target)
	if !service.Config.APIChangeOrigin {
		proxyRequest.Out.Host = proxyRequest.In.Host
	}
	proxyRequest.SetXForwarded()
	stripCookies(proxyRequest.Out, storage.KeyToken, storage.KeyUser, cookieNameClientID)

	if proxyRequest.Out.Header.Get(headerRequestID) == "" {
		proxyRequest.Out.Header.Set(headerRequestID, uuid.NewString())
	}

	// Forward the stored credentials of clients that do not send their own
	if proxyRequest.Out.Header.Get(headerAuthorization) == "" {
		if token, ok := service.checker(proxyRequest.In).Token(proxyRequest.In.Context()); ok {
			proxyRequest.Out.Header.Set(headerAuthorization, "Bearer "+token)
		}
	}
}

// captureAPIResponse persists the token and user record handed out by successful authentication responses and
// clears them after a successful logout
func (service *Service) captureAPIResponse(target *url.URL, response *http.Response) {
	path := strings.TrimPrefix(response.Request.URL.Path, strings.TrimSuffix(target.Path, "/"))
	isLogout := path == service.Config.APILogoutPath
	if !isLogout && !hasPathPrefix(path, service.Config.APICapturePrefix) {
		return
	}
	if response.StatusCode < 200 || response.StatusCode > 299 || !isPlainJSON(response) {
		return
	}

	// Read the body while keeping it intact for the client
	original := response.Body
	body, err := io.ReadAll(io.LimitReader(original, maxCaptureBytes+1))
	response.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), original), original}
	if err != nil || len(body) > maxCaptureBytes {
		return
	}

	payload := new(capturedPayload)
	if err := json.Unmarshal(body, payload); err != nil || !payload.Success {
		return
	}

	ctx := response.Request.Context()
	checker := service.checker(response.Request)
	if isLogout {
		checker.Clear(ctx)
		log.Debug().Str("path", path).Msg("cleared the client records after logout")
		return
	}

	store := checker.Store
	if payload.Token != nil && *payload.Token != "" {
		if err := store.Set(ctx, storage.KeyToken, *payload.Token); err != nil {
			log.Warn().Err(err).Msg("could not store the captured token")
		}
	}
	if isJSONObject(payload.User) {
		if err := store.Set(ctx, storage.KeyUser, string(payload.User)); err != nil {
			log.Warn().Err(err).Msg("could not store the captured user record")
		}
	}
}

// stripCookies removes the named cookies from an outgoing request and keeps all others
func stripCookies(request *http.Request, names ...string) {
	cookies := request.Cookies()
	request.Header.Del("Cookie")
	for _, cookie := range cookies {
		if !slices.Contains(names, cookie.Name) {
			request.AddCookie(cookie)
		}
	}
}

func isPlainJSON(response *http.Response) bool {
	if encoding := response.Header.Get("Content-Encoding"); encoding != "" && encoding != "identity" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(response.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
