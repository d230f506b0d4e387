package domain

import "strings"

// AccessPolicy restricts the service to one organizational email domain.
type AccessPolicy struct {
	Domain string
}

func NewAccessPolicy(domain string) AccessPolicy {
	return AccessPolicy{Domain: strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")}
}

// Allows reports whether email ends with "@<domain>". An empty policy
// domain allows nobody.
func (p AccessPolicy) Allows(email string) bool {
	if p.Domain == "" {
		return false
	}
	email = strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(email, "@"+p.Domain) && len(email) > len(p.Domain)+1
}

// Check returns ErrForbiddenDomain when email is not allowed.
func (p AccessPolicy) Check(email string) error {
	if !p.Allows(email) {
		return ErrForbiddenDomain
	}
	return nil
}
