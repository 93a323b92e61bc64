package services

import (
	"context"
	"log/slog"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// EvidenceUploader stores a photo and returns its public URL.
type EvidenceUploader interface {
	UploadEvidence(ctx context.Context, data []byte, contentType string) (string, error)
}

// EvidenceWriter persists evidence records.
type EvidenceWriter interface {
	Create(ctx context.Context, e models.WorkEvidence) (models.WorkEvidence, error)
}

// EvidenceService accepts a proof-of-work photo for a work order: upload
// to object storage first, then record the URL.
type EvidenceService struct {
	Storage  EvidenceUploader
	Evidence EvidenceWriter
	Orders   WorkOrderStore
	Logger   *slog.Logger
}

func (s *EvidenceService) Upload(ctx context.Context, userID, workOrderID int, data []byte, contentType string) (models.WorkEvidence, error) {
	if _, err := s.Orders.GetByID(ctx, workOrderID); err != nil {
		return models.WorkEvidence{}, err
	}

	url, err := s.Storage.UploadEvidence(ctx, data, contentType)
	if err != nil {
		return models.WorkEvidence{}, err
	}

	evidence, err := s.Evidence.Create(ctx, models.WorkEvidence{
		WorkOrderID: workOrderID,
		UserID:      userID,
		ImageURL:    url,
		TakenAt:     timeNow().UTC(),
	})
	if err != nil {
		return models.WorkEvidence{}, err
	}
	s.Logger.Info("evidence uploaded", "work_order_id", workOrderID, "user_id", userID)
	return evidence, nil
}
