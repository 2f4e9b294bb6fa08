package frontend

import (
	"github.com/kglearn/frontgate/internal/storage"
	"net/http"
	"testing"
)

func TestEndpointResolve(t *testing.T) {
	handler := newTestHandler(t, &Service{})

	recorder := do(handler, http.MethodGet, "/_router/resolve?to=%2Fdashboard")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	body := decodeJSON(t, recorder)
	if body["decision"] != decisionRedirect || body["rule"] != "requires-auth" || body["location"] != "/?redirect=%2Fdashboard" {
		t.Fatalf("body = %v", body)
	}
	redirect, _ := body["redirect"].(map[string]any)
	if redirect["name"] != "Home" {
		t.Fatalf("redirect = %v, want Home", redirect)
	}

	recorder = do(handler, http.MethodGet, "/_router/resolve?to=%2Fprofile&from=%2F", recordCookies(map[string]string{
		storage.KeyToken: validToken,
	})...)
	body = decodeJSON(t, recorder)
	if body["decision"] != decisionProceed || body["location"] != "/profile" {
		t.Fatalf("body = %v", body)
	}
	if _, ok := body["redirect"]; ok {
		t.Fatalf("body = %v, want no redirect", body)
	}
	to, _ := body["to"].(map[string]any)
	if to["name"] != "Profile" || to["meta"] != "requiresAuth" {
		t.Fatalf("to = %v", to)
	}
}

func TestEndpointResolveIgnoresCase(t *testing.T) {
	handler := newTestHandler(t, &Service{})

	body := decodeJSON(t, do(handler, http.MethodGet, "/_router/resolve?to=%2FDashboard"))
	if body["decision"] != decisionRedirect || body["location"] != "/?redirect=%2FDashboard" {
		t.Fatalf("body = %v", body)
	}
	to, _ := body["to"].(map[string]any)
	if to["name"] != "Dashboard" {
		t.Fatalf("to = %v", to)
	}
}

func TestEndpointResolveUnknownDestination(t *testing.T) {
	handler := newTestHandler(t, &Service{})

	body := decodeJSON(t, do(handler, http.MethodGet, "/_router/resolve?to=%2Fnowhere%3Fa%3D1"))
	if body["decision"] != decisionProceed || body["location"] != "/nowhere?a=1" {
		t.Fatalf("body = %v", body)
	}
}

func TestEndpointResolveValidation(t *testing.T) {
	handler := newTestHandler(t, &Service{})

	for _, target := range []string{
		"/_router/resolve",
		"/_router/resolve?to=dashboard",
		"/_router/resolve?to=%2F%2Fevil.example",
		"/_router/resolve?to=%2Fdashboard&from=https%3A%2F%2Fevil.example",
	} {
		recorder := do(handler, http.MethodGet, target)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want %d", target, recorder.Code, http.StatusBadRequest)
		}
		body := decodeJSON(t, recorder)
		if errs, _ := body["errors"].([]any); len(errs) == 0 {
			t.Fatalf("%s: body = %v, want errors", target, body)
		}
	}
}

func TestEndpointGetSession(t *testing.T) {
	handler := newTestHandler(t, &Service{})

	body := decodeJSON(t, do(handler, http.MethodGet, "/_session"))
	if body["authenticated"] != false || body["admin"] != false {
		t.Fatalf("guest: body = %v", body)
	}
	if _, ok := body["user"]; ok {
		t.Fatalf("guest: body = %v, want no user", body)
	}

	body = decodeJSON(t, do(handler, http.MethodGet, "/_session", recordCookies(map[string]string{
		storage.KeyToken: validToken,
		storage.KeyUser:  `{"is_admin":1,"username":"ada"}`,
	})...))
	if body["authenticated"] != true || body["admin"] != true {
		t.Fatalf("admin: body = %v", body)
	}
	if record, _ := body["user"].(map[string]any); record["username"] != "ada" {
		t.Fatalf("admin: body = %v, want the user record", body)
	}

	recorder := do(handler, http.MethodGet, "/_session", recordCookies(map[string]string{
		storage.KeyToken: expiredToken,
		storage.KeyUser:  `{"is_admin":true}`,
	})...)
	body = decodeJSON(t, recorder)
	if body["authenticated"] != false || body["admin"] != false {
		t.Fatalf("expired: body = %v", body)
	}
	if cookie := responseCookie(recorder, storage.KeyUser); cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expired: user cookie = %+v, want it to be removed", cookie)
	}
}

func TestEndpointLogout(t *testing.T) {
	handler := newTestHandler(t, &Service{})

	recorder := do(handler, http.MethodPost, "/_session/logout", recordCookies(map[string]string{
		storage.KeyToken: validToken,
		storage.KeyUser:  `{"is_admin":false}`,
	})...)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
	}
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if cookie := responseCookie(recorder, key); cookie == nil || cookie.MaxAge >= 0 {
			t.Fatalf("cookie %q = %+v, want it to be removed", key, cookie)
		}
	}

	recorder = do(handler, http.MethodGet, "/_session/logout")
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want %d", recorder.Code, http.StatusMethodNotAllowed)
	}
}
