// ABOUTME: Static route authorization policy evaluated after the auth gates
// ABOUTME: Ordered first-match-wins rules over path patterns with default deny

package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// RequirementKind enumerates the kinds of access requirement a rule can carry.
type RequirementKind int

const (
	// RequireAnyOf passes when the identity carries at least one of the
	// listed authorities.
	RequireAnyOf RequirementKind = iota
	// RequireAllOf passes only when the identity carries every listed
	// authority.
	RequireAllOf
	// PermitAll passes unconditionally, identity or not.
	PermitAll
	// DenyAll fails unconditionally.
	DenyAll
	// Authenticated passes for any established identity.
	Authenticated
)

// Requirement is the access condition attached to a policy rule.
type Requirement struct {
	Kind        RequirementKind
	Authorities []string
}

// AnyOf builds a requirement passing on any of the given authorities.
func AnyOf(authorities ...string) Requirement {
	return Requirement{Kind: RequireAnyOf, Authorities: authorities}
}

// AllOf builds a requirement passing only with all of the given authorities.
func AllOf(authorities ...string) Requirement {
	return Requirement{Kind: RequireAllOf, Authorities: authorities}
}

// Rule maps a path pattern (and optionally a method subset) to a requirement.
// A pattern is either an exact path or a prefix ending in "/*". An empty
// method list matches every method.
type Rule struct {
	Methods []string
	Pattern string
	Require Requirement
}

// Policy is an ordered list of rules evaluated top to bottom; the first rule
// whose pattern and method match decides the request. When no rule matches
// the request is denied.
type Policy struct {
	rules  []Rule
	logger *slog.Logger
}

// NewPolicy creates a policy from an ordered rule list.
func NewPolicy(rules []Rule, logger *slog.Logger) *Policy {
	return &Policy{rules: rules, logger: logger}
}

// match reports whether the rule applies to the given method and path.
func (r *Rule) match(method, path string) bool {
	if len(r.Methods) > 0 {
		found := false
		for _, m := range r.Methods {
			if m == method {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// allows reports whether the identity (possibly nil) satisfies the
// requirement.
func (req Requirement) allows(id *Identity) bool {
	switch req.Kind {
	case PermitAll:
		return true
	case DenyAll:
		return false
	case Authenticated:
		return id != nil
	case RequireAnyOf:
		return id != nil && id.HasAny(req.Authorities)
	case RequireAllOf:
		return id != nil && id.HasAll(req.Authorities)
	default:
		return false
	}
}

// Middleware returns the policy enforcement middleware. It must run after
// both auth gates so it sees whatever identity (possibly none) they attached.
// Denials surface as 401 when no identity was established and 403 when an
// identity is present but its authority set is insufficient.
func (p *Policy) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())

			for _, rule := range p.rules {
				if !rule.match(r.Method, r.URL.Path) {
					continue
				}
				if rule.Require.allows(id) {
					next.ServeHTTP(w, r)
					return
				}
				p.deny(w, r, id)
				return
			}

			// No rule matched: deny by default.
			p.deny(w, r, id)
		})
	}
}

func (p *Policy) deny(w http.ResponseWriter, r *http.Request, id *Identity) {
	w.Header().Set("Content-Type", "application/json")
	if id == nil {
		p.logger.Info("request denied: unauthenticated", "method", r.Method, "path", r.URL.Path)
		http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
		return
	}
	p.logger.Info("request denied: insufficient authority", "method", r.Method, "path", r.URL.Path, "username", id.Username)
	http.Error(w, `{"error":"access denied"}`, http.StatusForbidden)
}
