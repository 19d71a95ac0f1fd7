package out

import (
	"context"

	"worktime/internal/modules/attendance/domain"
)

// Submitter posts one attendance event. Rejections come back as *domain.SubmitError.
type Submitter interface {
	Submit(ctx context.Context, kind domain.Kind, requestID string, payload domain.Payload) (domain.Result, error)
}

// RecordStore returns apperrors.ErrNotFound for a day with no record.
type RecordStore interface {
	Load(ctx context.Context, day string) (domain.Record, error)
	Save(ctx context.Context, record domain.Record) error
}

type Journal interface {
	Append(ctx context.Context, entry domain.Entry) error
	Recent(ctx context.Context, limit int) ([]domain.Entry, error)
}
