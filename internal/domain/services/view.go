package services

import (
	"context"
)

// ViewService records document views. The immutable view event is written
// synchronously; the denormalized counter increment is detached and
// best-effort.
type ViewService interface {
	// RecordView inserts a view event for the document. viewerID is nil for
	// anonymous viewers.
	RecordView(ctx context.Context, documentID string, viewerID *string) error
}
