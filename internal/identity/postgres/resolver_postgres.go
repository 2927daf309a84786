package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"talentdocs/internal/identity"
)

// ResolverPostgres resolves access contexts from the identity tables.
// It performs a fresh lookup on every call; there is no cache.
type ResolverPostgres struct {
	db *sql.DB
}

// NewResolverPostgres creates a new ResolverPostgres.
func NewResolverPostgres(db *sql.DB) *ResolverPostgres {
	return &ResolverPostgres{db: db}
}

var _ identity.Resolver = (*ResolverPostgres)(nil)

// Resolve maps an actor identifier (the subject asserted by the upstream
// gateway) to the capability set used for every authorization decision.
func (r *ResolverPostgres) Resolve(ctx context.Context, actorID string) (*identity.AccessContext, error) {
	if actorID == "" {
		return nil, identity.ErrIdentityResolution
	}

	const q = `
		SELECT u.id, u.is_platform_admin, COALESCE(cp.id::text, ''), COALESCE(rc.id::text, '')
		FROM app_users u
		LEFT JOIN candidate_profiles cp ON cp.user_id = u.id
		LEFT JOIN recruiters rc ON rc.user_id = u.id
		WHERE u.external_ref = $1
	`
	ac := &identity.AccessContext{}
	err := r.db.QueryRowContext(ctx, q, actorID).Scan(
		&ac.IdentityUserID,
		&ac.IsPlatformAdmin,
		&ac.CandidateID,
		&ac.RecruiterID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrIdentityResolution
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	const qOrgs = `SELECT organization_id::text FROM organization_members WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, qOrgs, ac.IdentityUserID)
	if err != nil {
		return nil, fmt.Errorf("resolve memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orgID string
		if err := rows.Scan(&orgID); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		ac.OrganizationIDs = append(ac.OrganizationIDs, orgID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read memberships: %w", err)
	}

	return ac, nil
}
