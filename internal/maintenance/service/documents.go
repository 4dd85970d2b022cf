package service

import (
	"context"

	"fieldservice_backend/internal/adapters/storage"
	"fieldservice_backend/platform/apperr"

	"github.com/google/uuid"
)

// DocumentKind selects the bucket a document belongs to.
type DocumentKind string

const (
	DocumentQuotation    DocumentKind = "quotation"
	DocumentPaymentProof DocumentKind = "payment_proof"
)

func (s *Service) bucketFor(kind DocumentKind) (string, error) {
	switch kind {
	case DocumentQuotation:
		return s.cfg.GetMinioBucketQuotationDocs(), nil
	case DocumentPaymentProof:
		return s.cfg.GetMinioBucketPaymentProofs(), nil
	}
	return "", apperr.BadRequest("unknown document kind")
}

// RequestUploadURL creates a presigned PUT URL for a record document. The
// returned file key is what callers later pass as priceSupportRef or
// proofRef.
func (s *Service) RequestUploadURL(ctx context.Context, recordID uuid.UUID, kind DocumentKind, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error) {
	if s.store == nil {
		return nil, apperr.Unavailable("document storage is not configured")
	}
	bucket, err := s.bucketFor(kind)
	if err != nil {
		return nil, err
	}

	// Ensures the record exists before handing out an upload slot.
	if _, err := s.repo.GetByID(ctx, recordID); err != nil {
		return nil, err
	}

	url, err := s.store.GenerateUploadURL(ctx, bucket, recordID.String(), fileName, contentType, sizeBytes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "could not create upload URL", err)
	}
	return url, nil
}

// RequestDownloadURL creates a presigned GET URL for a stored document.
func (s *Service) RequestDownloadURL(ctx context.Context, kind DocumentKind, fileKey string) (*storage.PresignedURL, error) {
	if s.store == nil {
		return nil, apperr.Unavailable("document storage is not configured")
	}
	bucket, err := s.bucketFor(kind)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ObjectExists(ctx, bucket, fileKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "document storage is unreachable", err)
	}
	if !exists {
		return nil, apperr.NotFound("document not found")
	}

	url, err := s.store.GenerateDownloadURL(ctx, bucket, fileKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not create download URL", err)
	}
	return url, nil
}
