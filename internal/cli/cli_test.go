package cli

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func makeToken(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawStdEncoding.EncodeToString([]byte(payload)) + ".signature"
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestTokenCommand(t *testing.T) {
	at := "2024-01-01T00:00:00Z"

	out := execute(t, "token", makeToken(`{"exp":1704067200}`), "--at", at)
	if !strings.HasPrefix(out, "expired\n") {
		t.Fatalf("output = %q, want expired", out)
	}
	if !strings.Contains(out, "2024-01-01T00:00:00Z") {
		t.Fatalf("output = %q, want the expiry time", out)
	}

	out = execute(t, "token", makeToken(`{"exp":1704067201}`), "--at", at)
	if !strings.HasPrefix(out, "not expired\n") {
		t.Fatalf("output = %q, want not expired", out)
	}

	out = execute(t, "token", makeToken(`{"sub":"1"}`), "--at", at)
	if !strings.HasPrefix(out, "not expired\n") || !strings.Contains(out, "never") {
		t.Fatalf("output = %q, want a token that never expires", out)
	}

	out = execute(t, "token", "garbage")
	if !strings.HasPrefix(out, "expired\n") || !strings.Contains(out, "Reason") {
		t.Fatalf("output = %q, want a malformed token", out)
	}
}

func TestResolveCommandRedirectsGuests(t *testing.T) {
	out := execute(t, "resolve", "/dashboard")
	if !strings.HasPrefix(out, "redirect /?redirect=%2Fdashboard\n") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "requires-auth") || !strings.Contains(out, "(empty)") {
		t.Fatalf("output = %q, want the rule and an empty store", out)
	}
}

func TestResolveCommandRedirectsAdminsAwayFromHome(t *testing.T) {
	out := execute(t, "resolve", "/", "--token", makeToken(`{"sub":"1"}`), "--user", `{"is_admin":true}`)
	if !strings.HasPrefix(out, "redirect /admin\n") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "user = {\"is_admin\":true}") {
		t.Fatalf("output = %q, want the user record to be kept", out)
	}
}

func TestResolveCommandClearsExpiredRecords(t *testing.T) {
	out := execute(t, "resolve", "/profile",
		"--token", makeToken(`{"exp":1}`),
		"--user", `{"is_admin":false}`,
		"--at", "2024-01-01T00:00:00Z",
	)
	if !strings.HasPrefix(out, "redirect /?redirect=%2Fprofile\n") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "(empty)") {
		t.Fatalf("output = %q, want the expired records to be cleared", out)
	}
}

func TestResolveCommandProceedsForUnknownPaths(t *testing.T) {
	out := execute(t, "resolve", "/nowhere")
	if !strings.HasPrefix(out, "proceed /nowhere\n") || !strings.Contains(out, "Route:   none") {
		t.Fatalf("output = %q", out)
	}
}

func TestRoutesCommand(t *testing.T) {
	out := execute(t, "routes")
	for _, want := range []string{"/admin/profile", "AdminProfileView", "requiresAuth,requiresAdmin", "guestOnly"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output = %q, want it to contain %q", out, want)
		}
	}
}

func TestRoutesCommandLoadsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "routes.yaml")
	doc := `routes:
  - {path: /, name: Home, view: HomeView, meta: {guestOnly: true}}
  - {path: /dashboard, name: Dashboard, view: DashboardView, meta: {requiresAuth: true}}
  - {path: /admin, name: AdminHome, view: AdminHomeView, meta: {requiresAuth: true, requiresAdmin: true}}
  - {path: /reports, name: Reports, view: ReportsView, meta: {requiresAuth: true}}
`
	if err := os.WriteFile(file, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	out := execute(t, "routes", "--routes", file)
	if !strings.Contains(out, "ReportsView") || strings.Contains(out, "ProfileView") {
		t.Fatalf("output = %q", out)
	}

	out = execute(t, "resolve", "/reports", "--routes", file)
	if !strings.HasPrefix(out, "redirect /?redirect=%2Freports\n") {
		t.Fatalf("output = %q", out)
	}
}

func TestRoutesCommandRejectsMissingFile(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"routes", "--routes", filepath.Join(t.TempDir(), "missing.yaml")})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for a missing route table file")
	}
}
