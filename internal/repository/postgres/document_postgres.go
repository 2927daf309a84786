package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"talentdocs/internal/access"
	"talentdocs/internal/identity"
	"talentdocs/internal/model"
	"talentdocs/internal/repository"
)

const documentColumns = `id, entity_type, entity_id, document_type, file_name, file_path,
		file_size, mime_type, storage_bucket, uploaded_by, processing_status,
		metadata, created_at, updated_at, deleted_at`

// DocumentPostgres is a PostgreSQL implementation of
// repository.DocumentRepository. Every call resolves the actor's access
// context fresh; listing queries are narrowed server-side and then pass
// through the row-level predicate so nothing slips past a broad filter.
type DocumentPostgres struct {
	db       *sql.DB
	resolver identity.Resolver
	checker  *access.Checker
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB, resolver identity.Resolver, checker *access.Checker) *DocumentPostgres {
	return &DocumentPostgres{db: db, resolver: resolver, checker: checker}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// FindDocuments lists documents the actor may see.
func (r *DocumentPostgres) FindDocuments(ctx context.Context, actorID string, f model.DocumentFilter) (*repository.PageResult[model.Document], error) {
	ac, err := r.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	where, args := buildFilterClauses(f)
	if !ac.IsPlatformAdmin {
		scope, scopeArgs := buildScopeClause(ac, len(args))
		if scope == "" {
			// No capabilities at all: nothing is visible.
			return &repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil
		}
		where = append(where, scope)
		args = append(args, scopeArgs...)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	qCount := `SELECT COUNT(*) FROM documents` + clause
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	qList := `SELECT ` + documentColumns + ` FROM documents` + clause +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		// Second, row-level pass: the SQL scope is coarse for
		// application-typed rows, so re-check each one.
		ok, err := r.checker.CanAccessDocument(ctx, ac, d)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, *d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// FindByID fetches a single document and applies the row-level check.
// Absent and denied are the same (nil, nil) result.
func (r *DocumentPostgres) FindByID(ctx context.Context, id, actorID string) (*model.Document, error) {
	ac, err := r.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	ok, err := r.checker.CanAccessDocument(ctx, ac, d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, actorID string, doc *model.Document) (*model.Document, error) {
	ac, err := r.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanModifyEntity(ac, doc.EntityType, doc.EntityID) {
		return nil, repository.ErrAuthorization
	}

	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	q := `
		INSERT INTO documents (id, entity_type, entity_id, document_type, file_name,
			file_path, file_size, mime_type, storage_bucket, uploaded_by,
			processing_status, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		string(doc.EntityType),
		doc.EntityID,
		doc.DocumentType,
		doc.FileName,
		doc.FilePath,
		doc.FileSize,
		doc.MimeType,
		doc.StorageBucket,
		ac.IdentityUserID, // resolved identity, never the raw caller value
		doc.ProcessingStatus,
		meta,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// Update mutates the four mutable fields. The document must be visible to
// the actor (read check) and the actor must hold write access to its entity.
func (r *DocumentPostgres) Update(ctx context.Context, id, actorID string, upd model.DocumentUpdate) (*model.Document, error) {
	ac, err := r.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	existing, err := r.FindByID(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, repository.ErrNotFoundOrDenied
	}
	if !access.CanModifyEntity(ac, existing.EntityType, existing.EntityID) {
		return nil, repository.ErrAuthorization
	}
	if upd.Empty() {
		return existing, nil
	}

	sets := []string{"updated_at = $2"}
	args := []any{id, time.Now().UTC()}

	if upd.DocumentType != nil {
		args = append(args, *upd.DocumentType)
		sets = append(sets, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if upd.Metadata != nil {
		meta, err := json.Marshal(*upd.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		args = append(args, meta)
		sets = append(sets, fmt.Sprintf("metadata = $%d", len(args)))
	}
	if upd.ProcessingStatus != nil {
		args = append(args, *upd.ProcessingStatus)
		sets = append(sets, fmt.Sprintf("processing_status = $%d", len(args)))
	}
	if upd.Status != nil {
		// Status is derived: "deleted" sets the timestamp, "active" clears it.
		switch *upd.Status {
		case model.StatusDeleted:
			sets = append(sets, "deleted_at = COALESCE(deleted_at, now())")
		case model.StatusActive:
			sets = append(sets, "deleted_at = NULL")
		default:
			return nil, fmt.Errorf("invalid status %q", *upd.Status)
		}
	}

	q := `UPDATE documents SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + documentColumns
	return scanDocument(r.db.QueryRowContext(ctx, q, args...))
}

// SoftDelete marks a document deleted without touching its blob.
func (r *DocumentPostgres) SoftDelete(ctx context.Context, id, actorID string) error {
	ac, err := r.resolver.Resolve(ctx, actorID)
	if err != nil {
		return err
	}

	existing, err := r.FindByID(ctx, id, actorID)
	if err != nil {
		return err
	}
	if existing == nil {
		return repository.ErrNotFoundOrDenied
	}
	if !access.CanModifyEntity(ac, existing.EntityType, existing.EntityID) {
		return repository.ErrAuthorization
	}
	if existing.DeletedAt != nil {
		return nil // already deleted
	}

	const q = `UPDATE documents SET deleted_at = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	return nil
}

// buildFilterClauses turns caller filters into WHERE fragments.
func buildFilterClauses(f model.DocumentFilter) ([]string, []any) {
	var where []string
	var args []any

	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.EntityType != "" {
		add("entity_type = $%d", f.EntityType)
	}
	if f.EntityID != "" {
		add("entity_id = $%d", f.EntityID)
	}
	if f.DocumentType != "" {
		add("document_type = $%d", f.DocumentType)
	}
	if f.UploadedBy != "" {
		add("uploaded_by = $%d", f.UploadedBy)
	}
	if f.Search != "" {
		add("file_name ILIKE $%d", "%"+f.Search+"%")
	}

	switch f.Status {
	case model.StatusDeleted:
		where = append(where, "deleted_at IS NOT NULL")
	case "all":
		// no clause
	default: // active
		where = append(where, "deleted_at IS NULL")
	}

	return where, args
}

// buildScopeClause narrows a non-admin query to rows the actor could
// plausibly access. Application rows are matched coarsely here; the
// row-level pass settles true ownership. Returns "" when the actor has no
// capabilities, which callers treat as an empty result.
func buildScopeClause(ac *identity.AccessContext, argOffset int) (string, []any) {
	var parts []string
	var args []any
	n := argOffset

	if ac.IsCandidate() {
		n++
		parts = append(parts, fmt.Sprintf("(entity_type = 'candidate' AND entity_id = $%d)", n))
		args = append(args, ac.CandidateID)
	}
	if ac.HasOrganizations() {
		ph := make([]string, 0, len(ac.OrganizationIDs))
		for _, orgID := range ac.OrganizationIDs {
			n++
			ph = append(ph, fmt.Sprintf("$%d", n))
			args = append(args, orgID)
		}
		parts = append(parts, fmt.Sprintf("(entity_type = 'company' AND entity_id IN (%s))", strings.Join(ph, ", ")))
	}
	if ac.HasOrganizations() || ac.IsRecruiter() {
		parts = append(parts, "(entity_type = 'application')")
	}
	if ac.IsRecruiter() {
		parts = append(parts, "(entity_type = 'candidate' AND document_type = 'resume' AND metadata->>'is_primary' = 'true')")
	}

	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	var entityType string
	var meta []byte
	var deletedAt sql.NullTime

	if err := row.Scan(
		&d.ID,
		&entityType,
		&d.EntityID,
		&d.DocumentType,
		&d.FileName,
		&d.FilePath,
		&d.FileSize,
		&d.MimeType,
		&d.StorageBucket,
		&d.UploadedBy,
		&d.ProcessingStatus,
		&meta,
		&d.CreatedAt,
		&d.UpdatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	d.EntityType = model.EntityType(entityType)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		d.DeletedAt = &t
	}
	d.DeriveStatus()
	return &d, nil
}
