package identity

import (
	"context"
	"errors"
)

// ErrIdentityResolution is returned when an actor cannot be mapped to any
// known identity record. Callers must treat it as deny-all, never allow-all.
var ErrIdentityResolution = errors.New("identity could not be resolved")

// AccessContext is the capability descriptor for an authenticated actor.
// It is the single source of truth for "who can see what"; no other
// component re-derives capability independently.
type AccessContext struct {
	IdentityUserID  string
	IsPlatformAdmin bool
	CandidateID     string
	RecruiterID     string
	OrganizationIDs []string
}

// IsCandidate reports whether the actor owns a candidate profile.
func (ac *AccessContext) IsCandidate() bool { return ac.CandidateID != "" }

// IsRecruiter reports whether the actor has a recruiter identity.
func (ac *AccessContext) IsRecruiter() bool { return ac.RecruiterID != "" }

// HasOrganizations reports whether the actor belongs to any organization.
func (ac *AccessContext) HasOrganizations() bool { return len(ac.OrganizationIDs) > 0 }

// InOrganization reports whether the actor belongs to the given organization.
func (ac *AccessContext) InOrganization(orgID string) bool {
	for _, id := range ac.OrganizationIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// Resolver maps an authenticated actor identifier to its capability set.
// Resolution happens per call; implementations must not let a cached result
// grant access beyond actual membership.
type Resolver interface {
	Resolve(ctx context.Context, actorID string) (*AccessContext, error)
}
