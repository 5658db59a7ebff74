package service

import (
	"context"
	"log/slog"
	"time"

	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"

	"github.com/google/uuid"
)

// counterTimeout bounds the detached view-counter increment.
const counterTimeout = 5 * time.Second

type viewService struct {
	viewRepo repositories.ViewRepository
	docRepo  repositories.DocumentRepository
	logger   *slog.Logger
}

// NewViewService creates a new view service
func NewViewService(
	viewRepo repositories.ViewRepository,
	docRepo repositories.DocumentRepository,
	logger *slog.Logger,
) services.ViewService {
	return &viewService{
		viewRepo: viewRepo,
		docRepo:  docRepo,
		logger:   logger,
	}
}

// RecordView writes the immutable view event synchronously, then bumps the
// denormalized counter on a detached context so a slow or failed increment
// never delays or fails the read path.
func (s *viewService) RecordView(ctx context.Context, documentID string, viewerID *string) error {
	event := &models.ViewEvent{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		ViewerID:   viewerID,
		CreatedAt:  time.Now(),
	}
	if err := s.viewRepo.InsertEvent(ctx, event); err != nil {
		return err
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()
		if err := s.docRepo.IncrementCounter(bgCtx, documentID, models.CounterViews); err != nil {
			s.logger.Warn("view counter increment failed", "document_id", documentID, "error", err)
		}
	}()

	return nil
}
