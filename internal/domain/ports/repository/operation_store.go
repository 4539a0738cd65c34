package repository

import (
	"context"

	"video-generation-service/internal/domain/model"
)

// OperationStore is the single source of truth for job state across the
// request/response boundary. Writes are idempotent overwrites of the full
// record; every write refreshes the retention window so long-running jobs
// do not expire mid-flight. A Find after expiry returns domain.ErrNotFound,
// indistinguishable from a never-created id.
type OperationStore interface {
	Save(ctx context.Context, job *model.GenerationJob) error
	Find(ctx context.Context, id string) (*model.GenerationJob, error)
	Delete(ctx context.Context, id string) error
}
