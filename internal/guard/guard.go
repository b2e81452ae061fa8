// Package guard decides whether a session may enter a path. It reads the
// session only; it never fetches.
package guard

import (
	"strings"

	"storefront/internal/domain/entity"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	// RequireLogin sends the caller to the sign-in entry point.
	RequireLogin
	// Forbidden means the caller is signed in with the wrong role.
	Forbidden
	// Wait means session resolution has not finished yet.
	Wait
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RequireLogin:
		return "require_login"
	case Forbidden:
		return "forbidden"
	case Wait:
		return "wait"
	default:
		return "unknown"
	}
}

// Rule protects every path under Prefix. An empty Roles list only requires a session.
type Rule struct {
	Prefix string
	Roles  entity.Roles
}

func (r Rule) matches(path string) bool {
	prefix := strings.TrimRight(r.Prefix, "/")

	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Policy is an ordered rule list. The longest matching prefix wins.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy protects the seller and admin back offices and the buyer's
// own order and checkout pages. Admins may enter the seller area.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Rule{Prefix: "/seller", Roles: entity.Roles{entity.RoleSeller, entity.RoleAdmin}},
		Rule{Prefix: "/admin", Roles: entity.Roles{entity.RoleAdmin}},
		Rule{Prefix: "/orders"},
		Rule{Prefix: "/checkout"},
		Rule{Prefix: "/profile"},
	)
}

func (p *Policy) match(path string) (Rule, bool) {
	var (
		best  Rule
		found bool
	)
	for _, rule := range p.rules {
		if rule.matches(path) && (!found || len(rule.Prefix) > len(best.Prefix)) {
			best = rule
			found = true
		}
	}

	return best, found
}

// Check decides on path for the given session.
func (p *Policy) Check(sess entity.Session, path string) Decision {
	rule, ok := p.match(path)
	if !ok {
		return Allow
	}
	if !sess.Status.IsResolved() {
		return Wait
	}
	if !sess.IsAuthenticated() {
		return RequireLogin
	}
	if len(rule.Roles) > 0 && !rule.Roles.Contains(sess.User.Role) {
		return Forbidden
	}

	return Allow
}

// Roles returns the roles required for path, nil when any session or none is enough.
func (p *Policy) Roles(path string) entity.Roles {
	rule, ok := p.match(path)
	if !ok {
		return nil
	}

	return rule.Roles
}
