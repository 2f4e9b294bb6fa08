package frontend

import (
	"context"
	"github.com/kglearn/frontgate/internal/config"
	"github.com/kglearn/frontgate/internal/secret"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/kglearn/frontgate/internal/storage/inmem"
	"net/http"
	"testing"
)

func newDriverHandler(t *testing.T, target string) (*inmem.Driver, http.Handler) {
	t.Helper()
	driver := inmem.New()
	if err := driver.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize driver: %v", err)
	}
	t.Cleanup(driver.Close)

	cfg := testConfig(target)
	cfg.StorageDriver = config.StorageDriverMemory
	return driver, newTestHandler(t, &Service{Config: cfg, Driver: driver})
}

func TestClientStoreIssuesClientID(t *testing.T) {
	_, handler := newDriverHandler(t, "http://localhost:5005")

	recorder := do(handler, http.MethodGet, "/_session")
	clientID := responseCookie(recorder, cookieNameClientID)
	if clientID == nil || clientID.Value == "" || !clientID.HttpOnly {
		t.Fatalf("client ID cookie = %+v", clientID)
	}
	if _, err := secret.HashClientID(clientID.Value); err != nil {
		t.Fatalf("issued client ID is invalid: %v", err)
	}

	recorder = do(handler, http.MethodGet, "/_session", clientID)
	if cookie := responseCookie(recorder, cookieNameClientID); cookie != nil {
		t.Fatalf("client ID cookie = %+v, want the known ID to be kept", cookie)
	}

	recorder = do(handler, http.MethodGet, "/_session", &http.Cookie{Name: cookieNameClientID, Value: "forged"})
	if cookie := responseCookie(recorder, cookieNameClientID); cookie == nil || cookie.Value == "forged" {
		t.Fatalf("client ID cookie = %+v, want a fresh ID", cookie)
	}
}

func TestClientStoreKeepsRecordsServerSide(t *testing.T) {
	_, server := startBackend(t, `{"success":true,"token":"`+validToken+`","user":{"is_admin":false}}`)
	driver, handler := newDriverHandler(t, server.URL)

	raw, hash := secret.MustNewClientID()
	clientID := &http.Cookie{Name: cookieNameClientID, Value: raw}

	recorder := do(handler, http.MethodPost, "/api/auth/login", clientID)
	if cookie := responseCookie(recorder, storage.KeyToken); cookie != nil {
		t.Fatalf("token cookie = %+v, want records to stay server-side", cookie)
	}
	stored, ok, err := driver.Client(hash).Get(context.Background(), storage.KeyToken)
	if err != nil || !ok || stored != validToken {
		t.Fatalf("stored token = %q, %v, %v", stored, ok, err)
	}

	recorder = do(handler, http.MethodGet, "/dashboard", clientID)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	recorder = do(handler, http.MethodGet, "/admin", clientID)
	if location := recorder.Header().Get("Location"); location != "/dashboard" {
		t.Fatalf("location = %q, want /dashboard", location)
	}

	recorder = do(handler, http.MethodGet, "/dashboard")
	if location := recorder.Header().Get("Location"); location != "/?redirect=%2Fdashboard" {
		t.Fatalf("other client: location = %q", location)
	}

	do(handler, http.MethodPost, "/_session/logout", clientID)
	if _, ok, _ := driver.Client(hash).Get(context.Background(), storage.KeyToken); ok {
		t.Fatal("the token survived the logout")
	}
}
