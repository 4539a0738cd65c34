package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"video-generation-service/internal/domain"
	"video-generation-service/internal/domain/model"
	"video-generation-service/internal/domain/ports/repository"
)

var _ repository.OperationStore = (*JobStore)(nil)

// JobStore keeps generation job records in Redis under a per-key TTL.
// Every Save rewrites the full record and refreshes the retention window,
// so an in-flight job never expires between executor updates. Once the TTL
// lapses a Find is indistinguishable from a never-created id.
type JobStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewJobStore(client RedisClient, ttl time.Duration) *JobStore {
	return &JobStore{client: client, ttl: ttl}
}

func (s *JobStore) jobKey(id string) string {
	return fmt.Sprintf("generation_job:%s", id)
}

func (s *JobStore) Save(ctx context.Context, job *model.GenerationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.jobKey(job.ID), data, s.ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *JobStore) Find(ctx context.Context, id string) (*model.GenerationJob, error) {
	data, err := s.client.Get(ctx, s.jobKey(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var job model.GenerationJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.jobKey(id)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
