package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// ViewRepository records immutable view events.
type ViewRepository interface {
	// InsertEvent appends one view event row
	InsertEvent(ctx context.Context, event *models.ViewEvent) error
}
