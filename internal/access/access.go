// Package access holds the per-record authorization rules for documents.
// Read and write rules are deliberately asymmetric: recruiters can read
// primary resumes and owned applications but cannot upload to either.
package access

import (
	"context"
	"fmt"

	"talentdocs/internal/identity"
	"talentdocs/internal/model"
)

// OwnershipLookup answers cross-entity ownership questions that a row's
// own columns cannot: an application row only carries the application id,
// so deciding whether it belongs to an organization or recruiter requires
// walking application -> job -> company/assignee.
type OwnershipLookup interface {
	ApplicationBelongsToOrgs(ctx context.Context, applicationID string, orgIDs []string) (bool, error)
	ApplicationAssignedToRecruiter(ctx context.Context, applicationID, recruiterID string) (bool, error)
}

// Checker evaluates the row-level read predicate.
type Checker struct {
	Ownership OwnershipLookup
}

// NewChecker creates a Checker backed by the given ownership lookup.
func NewChecker(ownership OwnershipLookup) *Checker {
	return &Checker{Ownership: ownership}
}

// CanAccessDocument decides read access for one document row.
// Rules are evaluated in precedence order; first match wins:
//  1. platform admin
//  2. candidate reading their own candidate documents
//  3. organization member reading their company's documents
//  4. organization member reading applications owned by their company
//  5. recruiter reading a candidate's primary resume
//  6. recruiter reading applications they are assigned to
func (c *Checker) CanAccessDocument(ctx context.Context, ac *identity.AccessContext, doc *model.Document) (bool, error) {
	if ac == nil || doc == nil {
		return false, nil
	}
	if ac.IsPlatformAdmin {
		return true, nil
	}

	switch doc.EntityType {
	case model.EntityCandidate:
		if ac.IsCandidate() && doc.EntityID == ac.CandidateID {
			return true, nil
		}
		if ac.IsRecruiter() && doc.DocumentType == "resume" && doc.IsPrimary() {
			return true, nil
		}

	case model.EntityCompany:
		if ac.InOrganization(doc.EntityID) {
			return true, nil
		}

	case model.EntityApplication:
		if ac.HasOrganizations() {
			owned, err := c.Ownership.ApplicationBelongsToOrgs(ctx, doc.EntityID, ac.OrganizationIDs)
			if err != nil {
				return false, fmt.Errorf("application ownership: %w", err)
			}
			if owned {
				return true, nil
			}
		}
		if ac.IsRecruiter() {
			assigned, err := c.Ownership.ApplicationAssignedToRecruiter(ctx, doc.EntityID, ac.RecruiterID)
			if err != nil {
				return false, fmt.Errorf("application assignment: %w", err)
			}
			if assigned {
				return true, nil
			}
		}
	}

	return false, nil
}

// CanModifyEntity decides write access for an entity. Narrower than read
// access: only platform admins, the owning candidate, and members of the
// owning organization may create or modify documents.
func CanModifyEntity(ac *identity.AccessContext, entityType model.EntityType, entityID string) bool {
	if ac == nil {
		return false
	}
	if ac.IsPlatformAdmin {
		return true
	}
	switch entityType {
	case model.EntityCandidate:
		return ac.IsCandidate() && entityID == ac.CandidateID
	case model.EntityCompany:
		return ac.InOrganization(entityID)
	}
	return false
}
