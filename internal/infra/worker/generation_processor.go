package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"video-generation-service/internal/domain"
	"video-generation-service/internal/domain/model"
	"video-generation-service/internal/domain/ports/adapter"
	"video-generation-service/internal/domain/ports/repository"
	"video-generation-service/internal/infra/metrics"
)

// GenerationProcessor drives one submitted job to a terminal state:
// submit -> poll until done -> fetch bytes -> completed, or failed at the
// first unrecoverable step. Exactly one processor run owns a job id, so
// record updates for that id are strictly ordered.
type GenerationProcessor struct {
	store           repository.OperationStore
	provider        adapter.VideoProviderAdapter
	pollInterval    time.Duration
	maxPollAttempts int
	log             *zerolog.Logger
}

func NewGenerationProcessor(
	store repository.OperationStore,
	provider adapter.VideoProviderAdapter,
	pollInterval time.Duration,
	maxPollAttempts int,
	log *zerolog.Logger,
) *GenerationProcessor {
	return &GenerationProcessor{
		store:           store,
		provider:        provider,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		log:             log,
	}
}

// Process runs the full lifecycle for jobID. The generation request is
// passed in memory: the stored record only tracks that an image was
// provided, not the image itself.
func (p *GenerationProcessor) Process(ctx context.Context, jobID string, req adapter.GenerationRequest) error {
	log := p.log.With().Str("job_id", jobID).Logger()
	start := time.Now()

	job, err := p.store.Find(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Msg("job record unavailable before submission")
		return err
	}

	token, err := p.provider.Submit(ctx, req)
	if err != nil {
		p.finish(ctx, &log, job, start, 0, err)
		return err
	}

	if err := job.MarkPolling(token); err != nil {
		return err
	}
	p.save(ctx, &log, job)
	log.Info().Msg("generation submitted, polling")

	attempt := 0
	for attempt < p.maxPollAttempts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
		attempt++

		res, err := p.provider.Poll(ctx, token)
		if err != nil {
			p.finish(ctx, &log, job, start, attempt, err)
			return err
		}
		if !res.Done {
			if res.Progress > 0 {
				job.SetProgress(res.Progress)
			} else {
				// Heuristic bump; never claims 100 before the bytes exist.
				job.SetProgress(10 + (85*attempt)/p.maxPollAttempts)
			}
			p.save(ctx, &log, job)
			continue
		}

		data, err := p.provider.FetchBytes(ctx, res.ResultLocator)
		if err != nil {
			p.finish(ctx, &log, job, start, attempt, err)
			return err
		}
		if err := job.MarkCompleted(data); err != nil {
			return err
		}
		p.save(ctx, &log, job)
		p.observe(&log, job, start, attempt)
		log.Info().Int("bytes", len(data)).Int("attempts", attempt).Msg("generation completed")
		return nil
	}

	err = domain.ErrGenerationTimeout
	p.finish(ctx, &log, job, start, attempt, err)
	return err
}

// finish marks the job failed with the upstream message and records metrics.
func (p *GenerationProcessor) finish(ctx context.Context, log *zerolog.Logger, job *model.GenerationJob, start time.Time, attempts int, cause error) {
	if err := job.MarkFailed(cause.Error()); err != nil {
		return
	}
	// Terminal writes use a fresh context so shutdown does not lose them.
	p.save(context.WithoutCancel(ctx), log, job)
	p.observe(log, job, start, attempts)
	log.Error().Err(cause).Int("attempts", attempts).Msg("generation failed")
}

// save is best-effort: a failed write is logged and retried implicitly at
// the next natural update point, never via a dedicated retry loop.
func (p *GenerationProcessor) save(ctx context.Context, log *zerolog.Logger, job *model.GenerationJob) {
	if err := p.store.Save(ctx, job); err != nil {
		metrics.IncStoreWriteFailure()
		log.Error().Err(err).Str("status", string(job.Status)).Msg("store write failed")
	}
}

func (p *GenerationProcessor) observe(log *zerolog.Logger, job *model.GenerationJob, start time.Time, attempts int) {
	metrics.IncGenerationJob(string(job.Status))
	metrics.ObservePollAttempts(attempts)
	metrics.ObserveGenerationDuration(job.Provider, string(job.Status), time.Since(start).Seconds())
}
