// Package storage contains file/object storage abstractions for S3-compatible
// object stores. Implementations must avoid local disk and stream I/O only.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"talentdocs/internal/config"
	"talentdocs/internal/model"
)

// Sentinel errors for backend failures. Writes must never silently succeed
// on partial uploads; reads fail when the key is missing or unreachable.
var (
	ErrStorageWrite = errors.New("storage write failed")
	ErrStorageRead  = errors.New("storage read failed")
)

// DefaultPresignTTL is the default lifetime of a signed download URL.
const DefaultPresignTTL = time.Hour

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage moves bytes in and out of partitioned object storage and mints
// signed, time-limited download links. Keys are always freshly generated by
// the caller, so Put never overwrites an existing object in practice.
type Storage interface {
	// Put uploads an object into the given bucket under key.
	Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete physically removes an object. The document service never calls
	// this for document deletion (soft delete only); it exists for the
	// create-rollback path and for out-of-band retention processes.
	Delete(ctx context.Context, bucket, key string) error
	// PresignGet returns a time-limited URL granting read access without credentials.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// Buckets maps entity types onto the three storage partitions.
type Buckets struct {
	cfg config.BucketConfig
}

// NewBuckets creates the partition mapping from configured bucket names.
func NewBuckets(cfg config.BucketConfig) Buckets {
	return Buckets{cfg: cfg}
}

// For returns the bucket for an entity type. Pure and deterministic:
// candidate and application documents share the candidate partition, job
// and company documents share the company partition, and everything else
// (contract, placement, system, unmapped) lands in the system partition.
func (b Buckets) For(entityType model.EntityType) string {
	switch entityType {
	case model.EntityCandidate, model.EntityApplication:
		return b.cfg.Candidate
	case model.EntityJob, model.EntityCompany:
		return b.cfg.Company
	default:
		return b.cfg.System
	}
}

// All returns every partition bucket name.
func (b Buckets) All() []string {
	return []string{b.cfg.Candidate, b.cfg.Company, b.cfg.System}
}
