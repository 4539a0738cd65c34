// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"video-generation-service/internal/domain"
	"video-generation-service/internal/domain/model"
	"video-generation-service/internal/domain/ports/adapter"
	"video-generation-service/internal/domain/ports/repository"
	"video-generation-service/internal/infra/logging"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

// Scheduler hands detached tasks to the worker pool.
type Scheduler interface {
	Submit(task func(ctx context.Context) error) error
}

// JobExecutor drives one job to a terminal state in the background.
type JobExecutor interface {
	Process(ctx context.Context, jobID string, req adapter.GenerationRequest) error
}

type GenerationUseCase interface {
	// Submit validates the request, writes the initial record and schedules
	// the executor. It never blocks on upstream calls.
	Submit(ctx context.Context, prompt string, imageBytes []byte, imageMIME string) (*model.GenerationJob, error)
	// Status returns the current record snapshot, or domain.ErrNotFound for
	// an unknown or expired id.
	Status(ctx context.Context, id string) (*model.GenerationJob, error)
	// Download returns the artifact bytes and content type, only once the
	// job completed.
	Download(ctx context.Context, id string) ([]byte, string, error)
	Providers() []adapter.Capabilities
	EstimatedSeconds() int
}

type generationUC struct {
	store     repository.OperationStore
	provider  adapter.VideoProviderAdapter
	sched     Scheduler
	exec      JobExecutor
	estimated int
	log       *zerolog.Logger
}

func NewGenerationUseCase(
	store repository.OperationStore,
	provider adapter.VideoProviderAdapter,
	sched Scheduler,
	exec JobExecutor,
	estimatedSeconds int,
	log *zerolog.Logger,
) *generationUC {
	return &generationUC{
		store:     store,
		provider:  provider,
		sched:     sched,
		exec:      exec,
		estimated: estimatedSeconds,
		log:       log,
	}
}

func (g *generationUC) Submit(ctx context.Context, prompt string, imageBytes []byte, imageMIME string) (*model.GenerationJob, error) {
	defer logging.TraceDuration(g.log, "GenerationUC.Submit")()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidArgument
	}

	job := model.NewGenerationJob(uuid.NewString(), prompt, len(imageBytes) > 0, g.provider.Name(), g.provider.Model())
	if err := g.store.Save(ctx, job); err != nil {
		return nil, err
	}

	req := adapter.GenerationRequest{
		Prompt:        prompt,
		ImageBytes:    imageBytes,
		ImageMIMEType: imageMIME,
	}
	if err := g.sched.Submit(func(ctx context.Context) error {
		return g.exec.Process(logging.WithJobID(ctx, job.ID), job.ID, req)
	}); err != nil {
		// No executor will ever own this record; withdraw it.
		_ = g.store.Delete(ctx, job.ID)
		g.log.Error().Err(err).Str("job_id", job.ID).Msg("could not schedule generation")
		return nil, err
	}

	g.log.Info().Str("job_id", job.ID).Bool("image", job.ImageProvided).Msg("generation accepted")
	return job, nil
}

func (g *generationUC) Status(ctx context.Context, id string) (*model.GenerationJob, error) {
	return g.store.Find(ctx, id)
}

func (g *generationUC) Download(ctx context.Context, id string) ([]byte, string, error) {
	job, err := g.store.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if job.Status != model.GenerationStatusCompleted || len(job.Video) == 0 {
		// In-flight, failed and unknown all look the same here; the status
		// endpoint is the place to disambiguate.
		return nil, "", domain.ErrNotFound
	}
	return job.Video, "video/mp4", nil
}

func (g *generationUC) Providers() []adapter.Capabilities {
	return []adapter.Capabilities{g.provider.Capabilities()}
}

func (g *generationUC) EstimatedSeconds() int { return g.estimated }
