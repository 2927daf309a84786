package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"talentdocs/internal/access"
)

// OwnershipPostgres answers cross-entity ownership questions by walking
// application -> job -> company/assignee in the relational store.
type OwnershipPostgres struct {
	db *sql.DB
}

// NewOwnershipPostgres creates a new OwnershipPostgres lookup.
func NewOwnershipPostgres(db *sql.DB) *OwnershipPostgres {
	return &OwnershipPostgres{db: db}
}

var _ access.OwnershipLookup = (*OwnershipPostgres)(nil)

// ApplicationBelongsToOrgs reports whether the application's owning job
// belongs to one of the given organizations.
func (o *OwnershipPostgres) ApplicationBelongsToOrgs(ctx context.Context, applicationID string, orgIDs []string) (bool, error) {
	if len(orgIDs) == 0 {
		return false, nil
	}

	ph := make([]string, len(orgIDs))
	args := make([]any, 0, len(orgIDs)+1)
	args = append(args, applicationID)
	for i, orgID := range orgIDs {
		ph[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, orgID)
	}

	q := `
		SELECT EXISTS (
			SELECT 1 FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.id = $1 AND j.company_id::text IN (` + strings.Join(ph, ", ") + `)
		)`
	var owned bool
	if err := o.db.QueryRowContext(ctx, q, args...).Scan(&owned); err != nil {
		return false, fmt.Errorf("application org ownership: %w", err)
	}
	return owned, nil
}

// ApplicationAssignedToRecruiter reports whether the application's owning
// job is assigned to the given recruiter.
func (o *OwnershipPostgres) ApplicationAssignedToRecruiter(ctx context.Context, applicationID, recruiterID string) (bool, error) {
	if recruiterID == "" {
		return false, nil
	}

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.id = $1 AND j.recruiter_id::text = $2
		)`
	var assigned bool
	if err := o.db.QueryRowContext(ctx, q, applicationID, recruiterID).Scan(&assigned); err != nil {
		return false, fmt.Errorf("application recruiter assignment: %w", err)
	}
	return assigned, nil
}
