package router

import (
	"context"
	"encoding/base64"
	"github.com/kglearn/frontgate/internal/auth"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/kglearn/frontgate/internal/storage/memory"
	"testing"
	"time"
)

var guardNow = time.Unix(1_700_000_000, 0)

func guardToken(payload string) string {
	return "header." + base64.RawStdEncoding.EncodeToString([]byte(payload)) + ".signature"
}

func evaluate(t *testing.T, records map[string]string, to string) (Decision, *memory.Store) {
	t.Helper()
	table := DefaultTable()
	store := memory.NewWith(records)
	checker := auth.NewChecker(store)
	checker.Now = func() time.Time { return guardNow }

	destination, err := table.Resolve(to)
	if err != nil {
		t.Fatalf("Resolve(%q) returned error: %v", to, err)
	}
	origin, _ := table.Resolve("/")
	return NewGuard().Evaluate(context.Background(), checker, destination, origin), store
}

func TestGuardRedirectsAuthenticatedAdminAwayFromGuestRoute(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{
		storage.KeyToken: guardToken(`{"exp":1800000000}`),
		storage.KeyUser:  `{"is_admin":true}`,
	}, "/")
	if decision.Proceed() || decision.Redirect.Name != NameAdminHome {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameAdminHome)
	}
	if decision.Rule != "guest-only" {
		t.Fatalf("rule = %q, want %q", decision.Rule, "guest-only")
	}
}

func TestGuardRedirectsAuthenticatedUserAwayFromGuestRoute(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{
		storage.KeyToken: guardToken(`{}`),
		storage.KeyUser:  `{"is_admin":false}`,
	}, "/")
	if decision.Proceed() || decision.Redirect.Name != NameDashboard {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameDashboard)
	}
}

func TestGuardRedirectsAnonymousVisitorToHome(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{}, "/dashboard")
	if decision.Proceed() || decision.Redirect.Name != NameHome {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameHome)
	}
	if got := decision.Redirect.Query.Get(QueryRedirect); got != "/dashboard" {
		t.Fatalf("redirect query = %q, want %q", got, "/dashboard")
	}
}

func TestGuardMatchesDestinationsIgnoringCase(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{}, "/Dashboard")
	if decision.Proceed() || decision.Redirect.Name != NameHome {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameHome)
	}
	if got := decision.Redirect.Query.Get(QueryRedirect); got != "/Dashboard" {
		t.Fatalf("redirect query = %q, want %q", got, "/Dashboard")
	}

	decision, _ = evaluate(t, map[string]string{
		storage.KeyToken: guardToken(`{}`),
		storage.KeyUser:  `{"is_admin":false}`,
	}, "/ADMIN")
	if decision.Proceed() || decision.Redirect.Name != NameDashboard {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameDashboard)
	}
}

func TestGuardKeepsFullPathInRedirectQuery(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{}, "/profile?tab=security")
	if got := decision.Redirect.Query.Get(QueryRedirect); got != "/profile?tab=security" {
		t.Fatalf("redirect query = %q, want %q", got, "/profile?tab=security")
	}
}

func TestGuardRedirectsNonAdminAwayFromAdminRoute(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{
		storage.KeyToken: guardToken(`{"exp":1800000000}`),
		storage.KeyUser:  `{"is_admin":false}`,
	}, "/admin")
	if decision.Proceed() || decision.Redirect.Name != NameDashboard {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameDashboard)
	}
	if decision.Rule != "requires-admin" {
		t.Fatalf("rule = %q, want %q", decision.Rule, "requires-admin")
	}
}

func TestGuardLetsAdminIntoAdminRoute(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{
		storage.KeyToken: guardToken(`{"exp":1800000000}`),
		storage.KeyUser:  `{"is_admin":true}`,
	}, "/admin/profile")
	if !decision.Proceed() {
		t.Fatalf("decision = %+v, want proceed", decision)
	}
}

func TestGuardClearsExpiredRecordsAndRedirects(t *testing.T) {
	decision, store := evaluate(t, map[string]string{
		storage.KeyToken: guardToken(`{"exp":1600000000}`),
		storage.KeyUser:  `{"is_admin":true}`,
	}, "/admin")
	if decision.Proceed() || decision.Redirect.Name != NameHome {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameHome)
	}
	if records := store.Snapshot(); len(records) != 0 {
		t.Fatalf("records = %v, want none", records)
	}
}

func TestGuardLetsExpiredVisitorOntoGuestRoute(t *testing.T) {
	decision, store := evaluate(t, map[string]string{
		storage.KeyToken: guardToken(`{"exp":1600000000}`),
	}, "/")
	if !decision.Proceed() {
		t.Fatalf("decision = %+v, want proceed", decision)
	}
	if len(store.Snapshot()) != 0 {
		t.Fatal("expected expired token to be cleared")
	}
}

func TestGuardProceedsOnUnknownRoutes(t *testing.T) {
	decision, _ := evaluate(t, map[string]string{}, "/graph/42")
	if !decision.Proceed() {
		t.Fatalf("decision = %+v, want proceed", decision)
	}
}

func TestGuardAdminRouteWithoutAdminFlagForAnonymous(t *testing.T) {
	// requires-auth takes precedence over requires-admin
	decision, _ := evaluate(t, map[string]string{storage.KeyUser: `{"is_admin":false}`}, "/admin")
	if decision.Redirect == nil || decision.Redirect.Name != NameHome {
		t.Fatalf("decision = %+v, want redirect to %s", decision, NameHome)
	}
}

func TestGuardCustomRules(t *testing.T) {
	guard := &Guard{Rules: []Rule{{
		Name: "always",
		Evaluate: func(nav *Navigation) *Target {
			return &Target{Name: NameProfile}
		},
	}}}
	table := DefaultTable()
	to, _ := table.Resolve("/dashboard")
	decision := guard.Evaluate(context.Background(), auth.NewChecker(memory.New()), to, nil)
	if decision.Rule != "always" || decision.Redirect.Name != NameProfile {
		t.Fatalf("decision = %+v", decision)
	}
}
