package router

import (
	"context"
	"github.com/kglearn/frontgate/internal/auth"
	"net/url"
)

// QueryRedirect is the query parameter carrying the originally requested path when redirecting to Home
const QueryRedirect = "redirect"

// Navigation holds everything the guard rules get to see about a single navigation
type Navigation struct {
	To   *Location
	From *Location

	Authenticated bool
	admin         func() bool
}

// IsAdmin reports whether the navigating client is an administrator.
// The stored user record is only consulted by rules that ask.
func (nav *Navigation) IsAdmin() bool {
	return nav.admin()
}

// Rule represents a single guard rule.
// Evaluate returns the redirect target if the rule applies and nil otherwise.
type Rule struct {
	Name     string
	Evaluate func(nav *Navigation) *Target
}

// DefaultRules returns the rules of the portal in priority order
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "guest-only",
			Evaluate: func(nav *Navigation) *Target {
				if !nav.To.Meta.Has(FlagGuestOnly) || !nav.Authenticated {
					return nil
				}
				if nav.IsAdmin() {
					return &Target{Name: NameAdminHome}
				}
				return &Target{Name: NameDashboard}
			},
		},
		{
			Name: "requires-auth",
			Evaluate: func(nav *Navigation) *Target {
				if !nav.To.Meta.Has(FlagRequiresAuth) || nav.Authenticated {
					return nil
				}
				return &Target{
					Name:  NameHome,
					Query: url.Values{QueryRedirect: []string{nav.To.FullPath}},
				}
			},
		},
		{
			Name: "requires-admin",
			Evaluate: func(nav *Navigation) *Target {
				if !nav.To.Meta.Has(FlagRequiresAdmin) || nav.IsAdmin() {
					return nil
				}
				return &Target{Name: NameDashboard}
			},
		},
	}
}

// Decision represents the outcome of a guard evaluation: proceed if Redirect is nil
type Decision struct {
	Redirect *Target
	Rule     string
}

// Proceed reports whether the navigation may proceed unchanged
func (decision Decision) Proceed() bool {
	return decision.Redirect == nil
}

// Guard evaluates its rules before every navigation; the first matching rule wins
type Guard struct {
	Rules []Rule
}

// NewGuard creates a new guard using the default rules
func NewGuard() *Guard {
	return &Guard{
		Rules: DefaultRules(),
	}
}

// Evaluate decides about a navigation from one location to another based on the records the checker reads.
// Expired records are cleared before any rule runs.
func (guard *Guard) Evaluate(ctx context.Context, checker *auth.Checker, to, from *Location) Decision {
	checker.ClearIfExpired(ctx)

	nav := &Navigation{
		To:            to,
		From:          from,
		Authenticated: checker.IsAuthenticated(ctx),
		admin: func() bool {
			return checker.IsAdmin(ctx)
		},
	}
	for _, rule := range guard.Rules {
		if target := rule.Evaluate(nav); target != nil {
			return Decision{
				Redirect: target,
				Rule:     rule.Name,
			}
		}
	}
	return Decision{}
}
